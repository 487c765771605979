package catalog

import "time"

// StockCount is the quantity of one product held in one warehouse.
type StockCount struct {
	ID            int64     `json:"id"`
	WarehouseName string    `json:"warehouseName"`
	Count         int       `json:"count"`
	ProductID     int64     `json:"productId"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
