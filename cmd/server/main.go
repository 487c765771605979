package main

import "github.com/vapeshop/catalog-server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
