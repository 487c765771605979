package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
)

type DeviceService interface {
	List(ctx context.Context, filter catalog.Filter) ([]devices.Device, error)
	Get(ctx context.Context, id int64) (*devices.Device, error)
	Create(ctx context.Context, d devices.Device) (*devices.Device, error)
	Update(ctx context.Context, d devices.Device) (*devices.Device, error)
	Delete(ctx context.Context, id int64) error
	AddCompatibleLink(ctx context.Context, deviceID, componentID int64) error
	RemoveCompatibleLink(ctx context.Context, deviceID, componentID int64) error
}

type DevicesHandler struct {
	Service DeviceService
	Env     string
}

func NewDevicesHandler(service DeviceService, env string) *DevicesHandler {
	return &DevicesHandler{Service: service, Env: env}
}

func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *DevicesHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *DevicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body devices.Device
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	created, err := h.Service.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeCreated(w, fmt.Sprintf("/api/devices/%d", created.ID), created)
}

func (h *DevicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var body devices.Device
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

func (h *DevicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// AddComponent handles POST /devices/{deviceId}/components/{componentId}.
func (h *DevicesHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.Service.AddCompatibleLink)
}

// RemoveComponent handles DELETE /devices/{deviceId}/components/{componentId}.
func (h *DevicesHandler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.Service.RemoveCompatibleLink)
}

func (h *DevicesHandler) link(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, int64) error) {
	deviceID, err := pathID(r, "deviceId")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	componentID, err := pathID(r, "componentId")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if err := op(r.Context(), deviceID, componentID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
