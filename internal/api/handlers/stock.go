package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
)

type InventoryService interface {
	List(ctx context.Context, kind inventory.Kind, productID int64) ([]catalog.StockCount, error)
	Set(ctx context.Context, kind inventory.Kind, productID int64, params inventory.SetStockParams) (*catalog.StockCount, error)
	Remove(ctx context.Context, kind inventory.Kind, productID int64, warehouse string) error
}

// StockHandler serves the per-warehouse stock counts of one product kind.
type StockHandler struct {
	Service InventoryService
	Kind    inventory.Kind
	Env     string
}

func NewStockHandler(service InventoryService, kind inventory.Kind, env string) *StockHandler {
	return &StockHandler{Service: service, Kind: kind, Env: env}
}

func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	counts, err := h.Service.List(r.Context(), h.Kind, id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Set upserts the count for the warehouse named in the path; a warehouse in
// the body is ignored.
func (h *StockHandler) Set(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var body inventory.SetStockParams
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	body.Warehouse = strings.TrimSpace(r.PathValue("warehouse"))

	count, err := h.Service.Set(r.Context(), h.Kind, id, body)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

func (h *StockHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if err := h.Service.Remove(r.Context(), h.Kind, id, strings.TrimSpace(r.PathValue("warehouse"))); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
