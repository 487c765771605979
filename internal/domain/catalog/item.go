package catalog

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/vapeshop/catalog-server/internal/sanitize"
)

// MaxNameLength bounds product and component names.
const MaxNameLength = 200

// MaxQuantity is the largest count or measurement an INTEGER column holds.
const MaxQuantity = math.MaxInt32

// MaxPrice is the largest value a NUMERIC(12,2) price column holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// Item is the shape shared by every sellable product. Liquid and Device embed
// it by value; Component repeats the fields without sharing a base row.
type Item struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ManufacturerID int64           `json:"manufacturerId"`
	Price          decimal.Decimal `json:"price"`
	Image          []byte          `json:"image,omitempty"`
}

// Normalize strips markup from free-text fields and rounds the price to cents.
func (i *Item) Normalize() {
	i.Name = sanitize.Name(i.Name)
	i.Description = sanitize.Text(i.Description)
	i.Price = i.Price.Round(2)
}

// Validate checks the fields every product must carry.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return Invalid("name", "is required")
	}
	if utf8.RuneCountInString(i.Name) > MaxNameLength {
		return Invalid("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	if i.ManufacturerID <= 0 {
		return Invalid("manufacturerId", "must be a positive id")
	}
	if !i.Price.IsPositive() {
		return Invalid("price", "must be greater than zero")
	}
	if i.Price.GreaterThan(MaxPrice) {
		return Invalid("price", "must be at most "+MaxPrice.StringFixed(2))
	}
	return nil
}

// Ref is a lightweight pointer to the other side of a compatibility link.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Link asserts that a device can use a component.
type Link struct {
	DeviceID    int64 `json:"deviceId"`
	ComponentID int64 `json:"componentId"`
}

// Quantity returns a ValidationError when value is negative or exceeds
// MaxQuantity.
func Quantity(field string, value int) error {
	if value < 0 {
		return Invalid(field, "must not be negative")
	}
	if value > MaxQuantity {
		return Invalid(field, fmt.Sprintf("must be at most %d", MaxQuantity))
	}
	return nil
}
