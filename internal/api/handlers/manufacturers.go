package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
)

type ManufacturerService interface {
	List(ctx context.Context) ([]manufacturers.Manufacturer, error)
	Get(ctx context.Context, id int64) (*manufacturers.Manufacturer, error)
	Create(ctx context.Context, m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error)
	Update(ctx context.Context, m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error)
	Delete(ctx context.Context, id int64) error
}

type ManufacturersHandler struct {
	Service ManufacturerService
	Env     string
}

func NewManufacturersHandler(service ManufacturerService, env string) *ManufacturersHandler {
	return &ManufacturersHandler{Service: service, Env: env}
}

func (h *ManufacturersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ManufacturersHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *ManufacturersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body manufacturers.Manufacturer
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	created, err := h.Service.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeCreated(w, fmt.Sprintf("/api/manufacturers/%d", created.ID), created)
}

func (h *ManufacturersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var body manufacturers.Manufacturer
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

func (h *ManufacturersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
