package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
)

type LiquidService interface {
	List(ctx context.Context, filter catalog.Filter) ([]liquids.Liquid, error)
	Get(ctx context.Context, id int64) (*liquids.Liquid, error)
	Create(ctx context.Context, l liquids.Liquid) (*liquids.Liquid, error)
	Update(ctx context.Context, l liquids.Liquid) (*liquids.Liquid, error)
	Delete(ctx context.Context, id int64) error
}

type LiquidsHandler struct {
	Service LiquidService
	Env     string
}

func NewLiquidsHandler(service LiquidService, env string) *LiquidsHandler {
	return &LiquidsHandler{Service: service, Env: env}
}

func (h *LiquidsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *LiquidsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *LiquidsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body liquids.Liquid
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	created, err := h.Service.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeCreated(w, fmt.Sprintf("/api/liquids/%d", created.ID), created)
}

func (h *LiquidsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var body liquids.Liquid
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if body.ID, err = bodyID(id, body.ID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if _, err := h.Service.Update(r.Context(), body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LiquidsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
