package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vapeshop/catalog-server/internal/api/problem"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

func init() {
	// Prices are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeCreated answers 201 with a Location header pointing at the new resource.
func writeCreated(w http.ResponseWriter, location string, payload any) {
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusCreated, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeTooLarge, "Payload Too Large", err, env,
			problem.WithDetail(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)))
		return
	}
	problem.WriteError(w, r, err, env)
}

// decodeJSON reads a single JSON document from the body into dst. Malformed
// input becomes a catalog.ValidationError; an oversized body surfaces as
// *http.MaxBytesError.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return catalog.Invalid("body", "is required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return err
		case errors.Is(err, io.EOF):
			return catalog.Invalid("body", "is required")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return catalog.Invalid("body", "is not valid JSON")
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return catalog.Invalid(field, "has the wrong type")
		default:
			return catalog.Invalid("body", err.Error())
		}
	}
	if dec.More() {
		return catalog.Invalid("body", "must contain a single JSON document")
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, catalog.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// bodyID reconciles the id carried in an update body with the route id.
// A zero body id adopts the route id; any other mismatch is rejected.
func bodyID(routeID, bodyID int64) (int64, error) {
	if bodyID != 0 && bodyID != routeID {
		return 0, catalog.Invalid("id", "does not match the id in the URL")
	}
	return routeID, nil
}
