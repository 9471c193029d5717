package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/middleware"
	"github.com/hitoshi/commcal/internal/model"
)

func newSignupRouter(h *SignupHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/events/{id}/signup", h.SignUp)
	r.Delete("/api/events/{id}/signup", h.SignOut)
	return r
}

func TestSignupHandler_SignUp_Returns201(t *testing.T) {
	svc := &mockSignupService{
		signUpFn: func(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
			return &model.Signup{ID: "signup-1", AccountID: accountID, EventID: eventID}, nil
		},
	}
	collector := &mockMetrics{}
	h := NewSignupHandler(svc, collector)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/signup", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "acct-1"))
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	var resp signupResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.EventID != "ev-1" || resp.AccountID != "acct-1" {
		t.Errorf("signup = %+v, want acct-1/ev-1", resp)
	}
	if collector.signupsCreated != 1 {
		t.Errorf("signupsCreated = %d, want 1", collector.signupsCreated)
	}
}

func TestSignupHandler_SignUp_Duplicate_Returns409(t *testing.T) {
	svc := &mockSignupService{
		signUpFn: func(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
			return nil, model.NewDuplicateSignupError()
		},
	}
	collector := &mockMetrics{}
	h := NewSignupHandler(svc, collector)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/signup", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "acct-1"))
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Message != "You have already signed up for this event." {
		t.Errorf("message = %q", resp.Message)
	}
	if collector.signupsDenied != 1 || collector.lastDenialReason != model.ErrCodeDuplicateSignup {
		t.Errorf("denial metrics = %d/%q", collector.signupsDenied, collector.lastDenialReason)
	}
}

func TestSignupHandler_SignUp_PastEvent_Returns409(t *testing.T) {
	svc := &mockSignupService{
		signUpFn: func(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
			return nil, model.NewEventAlreadyOccurredError()
		},
	}
	h := NewSignupHandler(svc, &mockMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/signup", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "acct-1"))
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}
}

func TestSignupHandler_SignUp_StorageFailure_Returns500(t *testing.T) {
	svc := &mockSignupService{
		signUpFn: func(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
			return nil, fmt.Errorf("参加登録の保存に失敗しました: %w", errors.New("pq: connection refused"))
		},
	}
	collector := &mockMetrics{}
	h := NewSignupHandler(svc, collector)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/signup", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "acct-1"))
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", resp.Code)
	}
	if collector.signupsDenied != 0 {
		t.Errorf("signupsDenied = %d, want 0", collector.signupsDenied)
	}
}

func TestSignupHandler_SignUp_NoSession_Returns401(t *testing.T) {
	h := NewSignupHandler(&mockSignupService{}, &mockMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/signup", nil)
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestSignupHandler_SignOut_Returns204(t *testing.T) {
	svc := &mockSignupService{
		signOutFn: func(ctx context.Context, accountID, eventID string) error {
			return nil
		},
	}
	h := NewSignupHandler(svc, &mockMetrics{})

	req := httptest.NewRequest(http.MethodDelete, "/api/events/ev-1/signup", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "acct-1"))
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

func TestSignupHandler_SignOut_NotSignedUp_Returns409(t *testing.T) {
	svc := &mockSignupService{
		signOutFn: func(ctx context.Context, accountID, eventID string) error {
			return model.NewNotSignedUpError()
		},
	}
	h := NewSignupHandler(svc, &mockMetrics{})

	req := httptest.NewRequest(http.MethodDelete, "/api/events/ev-1/signup", nil)
	req = req.WithContext(middleware.ContextWithAccountID(req.Context(), "acct-1"))
	w := httptest.NewRecorder()

	newSignupRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Message != "You are not signed up for this event." {
		t.Errorf("message = %q", resp.Message)
	}
}
