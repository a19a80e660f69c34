package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
)

// Handler manages all API endpoints and dependencies.
type Handler struct {
	deps *domain.AppDependencies
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(deps *domain.AppDependencies) *Handler {
	return &Handler{deps: deps}
}

// ApplyRequest is the body of POST /api/v1/qos/apply.
type ApplyRequest struct {
	SliceID   string         `json:"slice_id"`
	ProfileID string         `json:"profile_id,omitempty"`
	Overrides *qos.Overrides `json:"overrides,omitempty"`
}

// AutoConfigureRequest is the body of POST /api/v1/qos/auto.
type AutoConfigureRequest struct {
	UseCases []string `json:"use_cases"`
}

// ArbiterApplyRequest is the body of POST /api/v1/priority/apply.
type ArbiterApplyRequest struct {
	PresetID string `json:"preset_id"`
}

// HandleProfilesList returns the profile catalog.
func (h *Handler) HandleProfilesList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.deps.Catalog().Profiles())
}

// HandleSlicesList returns the slice catalog.
func (h *Handler) HandleSlicesList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.deps.Catalog().Slices())
}

// HandleUseCasesList returns the use-case bindings.
func (h *Handler) HandleUseCasesList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.deps.Catalog().UseCases())
}

// HandlePresetsList returns the arbitration preset catalog.
func (h *Handler) HandlePresetsList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.deps.Catalog().Presets())
}

// HandleApply shapes a slice with a profile and optional overrides.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteInvalidRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.SliceID == "" {
		WriteInvalidRequest(w, "slice_id is required")
		return
	}

	result, err := h.deps.Engine().Apply(r.Context(), req.SliceID, req.ProfileID, req.Overrides)
	if err != nil {
		WriteDomainError(w, err, result)
		return
	}
	WriteJSON(w, result)
}

// HandleClear removes all shaping from one slice.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	sliceID := chi.URLParam(r, "slice_id")

	result, err := h.deps.Engine().Clear(r.Context(), sliceID)
	if err != nil {
		WriteDomainError(w, err, result)
		return
	}
	WriteJSON(w, result)
}

// HandleClearAll removes all shaping from every slice.
func (h *Handler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.deps.Engine().ClearAll(r.Context()))
}

// HandleStatus returns the transport status of every slice.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, h.deps.Engine().FullStatus(r.Context()))
}

// HandleSliceStatus returns the transport status of one slice.
func (h *Handler) HandleSliceStatus(w http.ResponseWriter, r *http.Request) {
	sliceID := chi.URLParam(r, "slice_id")

	status, err := h.deps.Engine().SliceStatus(r.Context(), sliceID)
	if err != nil {
		WriteDomainError(w, err, nil)
		return
	}
	WriteJSON(w, status)
}

// HandleAutoConfigure derives and applies per-slice profiles from the active
// use cases.
func (h *Handler) HandleAutoConfigure(w http.ResponseWriter, r *http.Request) {
	var req AutoConfigureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteInvalidRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	WriteJSON(w, h.deps.Engine().AutoConfigure(r.Context(), req.UseCases))
}

// HandleArbiterApply applies an arbitration preset on the bottleneck.
func (h *Handler) HandleArbiterApply(w http.ResponseWriter, r *http.Request) {
	var req ArbiterApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteInvalidRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.PresetID == "" {
		WriteInvalidRequest(w, "preset_id is required")
		return
	}

	result, err := h.deps.Arbiter().ApplyPreset(r.Context(), req.PresetID)
	if err != nil {
		WriteDomainError(w, err, nil)
		return
	}
	WriteJSON(w, result)
}

// HandleArbiterClear removes the arbitration hierarchy from the bottleneck.
func (h *Handler) HandleArbiterClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Arbiter().ClearPreset(r.Context()); err != nil {
		WriteDomainError(w, err, nil)
		return
	}
	WriteJSON(w, map[string]interface{}{"success": true, "message": "Arbitration cleared"})
}

// HandleArbiterStatus returns the arbitration state plus the bottleneck's
// live class tree.
func (h *Handler) HandleArbiterStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.deps.Arbiter().Status(r.Context())
	if err != nil {
		WriteDomainError(w, err, nil)
		return
	}
	WriteJSON(w, status)
}
