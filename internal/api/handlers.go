/**
 * @description
 * This file contains the HTTP handler functions for the onboarding-service.
 * Handlers parse the incoming request, call the flow service, and map its
 * results and errors onto HTTP responses. Submission failures come back as
 * a generic retry-able message; the flow state is never advanced or cleared
 * on failure, so the client can simply retry.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventra/onboarding-service/internal/app"
	"github.com/eventra/onboarding-service/internal/domain"
	"github.com/eventra/onboarding-service/internal/flow"
	"github.com/eventra/onboarding-service/internal/store"
)

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service *app.Service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// handleGetFlow rehydrates the user's flow for the wizard UI.
func (h *Handler) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state := h.service.Resume(r.Context(), userID)
	respondWithJSON(w, http.StatusOK, state)
}

// handleUpdateStep records a validated answer for one step.
func (h *Handler) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload domain.StepPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// The URL names the step; the body only carries the answer.
	payload.Step = domain.StepID(chi.URLParam(r, "step"))

	state, err := h.service.UpdateStep(r.Context(), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPayloadMismatch):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, flow.ErrRoleAlreadySet):
			respondWithError(w, http.StatusConflict, "Role cannot change mid-flow; restart onboarding to switch roles")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to record step")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// handleNavigate moves the flow forward, backward or to a specific step.
func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Action app.NavigationAction `json:"action"`
		Target int                  `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := h.service.Navigate(r.Context(), userID, req.Action, req.Target)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// handleSubmit runs the final commit sequence and returns the destination.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.service.Submit(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSubmissionIncomplete):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, store.ErrSlugTaken):
			respondWithError(w, http.StatusConflict, "That organization slug is already taken")
		case errors.Is(err, store.ErrOrganizationNotFound):
			respondWithError(w, http.StatusNotFound, "The selected organization no longer exists")
		default:
			// Keep it generic; earlier idempotent writes make a straight
			// retry safe.
			respondWithError(w, http.StatusBadGateway, "Submission failed, please try again")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// handleAbandon clears the persisted flow.
func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.service.Abandon(r.Context(), userID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSearchOrganizations backs the organization picker on the setup step.
func (h *Handler) handleSearchOrganizations(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	orgs, err := h.service.SearchOrganizations(r.Context(), query)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Organization search failed")
		return
	}
	if orgs == nil {
		orgs = []domain.Organization{}
	}
	respondWithJSON(w, http.StatusOK, orgs)
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error body.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
