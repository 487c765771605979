package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// Filter narrows catalog listings. Zero values match everything.
type Filter struct {
	Query          string
	ManufacturerID int64
}

// ParseFilter reads the optional q and manufacturerId query parameters.
func ParseFilter(values url.Values) (Filter, error) {
	filter := Filter{Query: strings.TrimSpace(values.Get("q"))}

	raw := strings.TrimSpace(values.Get("manufacturerId"))
	if raw == "" {
		return filter, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return filter, Invalid("manufacturerId", "must be a positive integer")
	}
	filter.ManufacturerID = id
	return filter, nil
}
