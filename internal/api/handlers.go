package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/juniorISO69960/schema.autobot.tf/internal/query"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
)

func (h *handlers) openAPI(w http.ResponseWriter, r *http.Request) {
	if len(h.openapi) == 0 {
		failure(w, http.StatusNotFound, "API document is not available", nil)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(h.openapi)
}

func (h *handlers) schemaDocument(w http.ResponseWriter, r *http.Request) {
	snap, err := h.facade.Snapshot()
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	writeRawJSON(w, http.StatusOK, snap.Document())
}

func (h *handlers) schemaDownload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.facade.Snapshot()
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, snap.Document(), "", "  "); err != nil {
		writeError(w, h.logger, fmt.Errorf("indent document: %w", err), "")
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=schema.json")
	writeRawJSON(w, http.StatusOK, buf.Bytes())
}

func (h *handlers) schemaRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.refresher.Trigger(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"version": res.Version,
		"items":   res.Items,
	})
}

type snapshotStatus struct {
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetchedAt"`
	AgeSeconds float64   `json:"ageSeconds"`
	Items      int       `json:"items"`
}

func (h *handlers) schemaStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"success":  true,
		"refresh":  h.refresher.State(),
		"snapshot": nil,
	}
	if snap, err := h.facade.Snapshot(); err == nil {
		body["snapshot"] = snapshotStatus{
			Version:    snap.Version,
			Source:     snap.Source,
			FetchedAt:  snap.FetchedAt.UTC(),
			AgeSeconds: time.Since(snap.FetchedAt).Seconds(),
			Items:      snap.ItemCount(),
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) property(p query.Property) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.facade.Property(p)
		if err != nil {
			writeError(w, h.logger, err, "")
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (h *handlers) classWeapons(w http.ResponseWriter, r *http.Request) {
	weapons, err := h.facade.ClassWeapons(chi.URLParam(r, "classChar"))
	if errors.Is(err, query.ErrInvalidClass) {
		failure(w, http.StatusBadRequest, "Invalid Character class.", map[string]any{
			"validChar": schema.Classes,
		})
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, weapons)
}

func (h *handlers) rawValue(section schema.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		v, err := h.facade.RawValue(section, key)
		switch {
		case errors.Is(err, query.ErrInvalidKey):
			failure(w, http.StatusBadRequest, fmt.Sprintf("%s is not a valid key of raw.%s", key, section), map[string]any{
				"validKeys": section.Keys(),
			})
			return
		case err != nil:
			writeError(w, h.logger, err, fmt.Sprintf("Cannot find value of %s key in raw.%s", key, section))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "value": v})
	}
}
