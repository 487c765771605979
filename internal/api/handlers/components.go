package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/components"
)

type ComponentService interface {
	List(ctx context.Context, filter catalog.Filter) ([]components.Component, error)
	Get(ctx context.Context, id int64) (*components.Component, error)
	Create(ctx context.Context, c components.Component) (*components.Component, error)
	Update(ctx context.Context, c components.Component) (*components.Component, error)
	Delete(ctx context.Context, id int64) error
	AddCompatibleLink(ctx context.Context, componentID, deviceID int64) error
	RemoveCompatibleLink(ctx context.Context, componentID, deviceID int64) error
}

type ComponentsHandler struct {
	Service ComponentService
	Env     string
}

func NewComponentsHandler(service ComponentService, env string) *ComponentsHandler {
	return &ComponentsHandler{Service: service, Env: env}
}

func (h *ComponentsHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *ComponentsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *ComponentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body components.Component
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	created, err := h.Service.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeCreated(w, fmt.Sprintf("/api/components/%d", created.ID), created)
}

func (h *ComponentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var body components.Component
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

func (h *ComponentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// AddDevice handles POST /components/{componentId}/devices/{deviceId}.
func (h *ComponentsHandler) AddDevice(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.Service.AddCompatibleLink)
}

// RemoveDevice handles DELETE /components/{componentId}/devices/{deviceId}.
func (h *ComponentsHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.Service.RemoveCompatibleLink)
}

func (h *ComponentsHandler) link(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) error) {
	componentID, err := pathID(r, "componentId")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	deviceID, err := pathID(r, "deviceId")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if err := op(r.Context(), componentID, deviceID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
