package admin

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vizfeed/beacon/marker"
	"github.com/vizfeed/beacon/publisher"
)

// AdminHandlers exposes a debug HTTP surface over the marker registry.
// It drives the exact same staged-mutation API callers use in-process;
// nothing here bypasses the commit discipline.
type AdminHandlers struct {
	registry *publisher.MarkerRegistry
}

// NewAdminHandlers creates handlers bound to a registry
func NewAdminHandlers(registry *publisher.MarkerRegistry) *AdminHandlers {
	return &AdminHandlers{registry: registry}
}

// handleListMarkers returns the committed marker set
func (h *AdminHandlers) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()

	writeJSONResponse(w, map[string]interface{}{
		"count":   len(snap),
		"markers": snap,
	})
}

// markerName extracts the marker name from the route's catch-all wildcard.
// Names may contain slashes; percent-escaped segments are decoded.
func markerName(r *http.Request) string {
	name := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

// handleGetMarker returns one committed marker by name
func (h *AdminHandlers) handleGetMarker(w http.ResponseWriter, r *http.Request) {
	name := markerName(r)

	m, ok := h.registry.Lookup(name)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "marker not found: "+name)
		return
	}

	writeJSONResponse(w, map[string]interface{}{
		"name":   name,
		"marker": m,
	})
}

// handleStageUpsert stages an upsert for the named marker. The marker stays
// invisible to the broadcast loop until /apply.
func (h *AdminHandlers) handleStageUpsert(w http.ResponseWriter, r *http.Request) {
	name := markerName(r)

	var m marker.Marker
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid marker body: "+err.Error())
		return
	}

	h.registry.Insert(name, m)

	writeJSONResponse(w, map[string]interface{}{
		"staged":  "upsert",
		"name":    name,
		"pending": h.registry.PendingLen(),
	})
}

// handleStageDelete stages a delete for the named marker
func (h *AdminHandlers) handleStageDelete(w http.ResponseWriter, r *http.Request) {
	name := markerName(r)

	h.registry.Delete(name)

	writeJSONResponse(w, map[string]interface{}{
		"staged":  "delete",
		"name":    name,
		"pending": h.registry.PendingLen(),
	})
}

// handleStageDeleteAll stages a clear of the whole committed set
func (h *AdminHandlers) handleStageDeleteAll(w http.ResponseWriter, r *http.Request) {
	h.registry.DeleteAll()

	writeJSONResponse(w, map[string]interface{}{
		"staged": "delete_all",
	})
}

// handleApply commits all staged operations
func (h *AdminHandlers) handleApply(w http.ResponseWriter, r *http.Request) {
	h.registry.ApplyChanges()

	writeJSONResponse(w, map[string]interface{}{
		"applied":   true,
		"committed": h.registry.CommittedLen(),
	})
}

// handleStats returns registry statistics
func (h *AdminHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, map[string]interface{}{
		"topic":       h.registry.Topic(),
		"interval_ms": h.registry.Interval().Milliseconds(),
		"committed":   h.registry.CommittedLen(),
		"pending":     h.registry.PendingLen(),
	})
}

func writeJSONResponse(w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Warn().Err(err).Msg("Failed to write admin response")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
