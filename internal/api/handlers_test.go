package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlers_RejectMissingIdentity(t *testing.T) {
	h := NewHandler(nil)

	endpoints := map[string]http.HandlerFunc{
		"flow":     h.handleGetFlow,
		"navigate": h.handleNavigate,
		"submit":   h.handleSubmit,
		"abandon":  h.handleAbandon,
		"search":   h.handleSearchOrganizations,
	}

	for name, handler := range endpoints {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handler(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 without identity, got %d", rec.Code)
			}
		})
	}
}

func TestHandleSearchOrganizations_RequiresQuery(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/organizations/search", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDKey, "user-1"))
	rec := httptest.NewRecorder()

	h.handleSearchOrganizations(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing query, got %d", rec.Code)
	}
}

func TestRespondWithError_WritesJSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithError(rec, http.StatusBadGateway, "Submission failed, please try again")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON body: %v", err)
	}
	if body["error"] != "Submission failed, please try again" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestUserFromContext_MissingValue(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("expected no user id on an empty context")
	}
}
