package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/metrics"
	"github.com/hitoshi/commcal/internal/model"
)

// SignupServiceInterface は参加登録ハンドラーが必要とするサービスインターフェース。
type SignupServiceInterface interface {
	SignUp(ctx context.Context, accountID, eventID string) (*model.Signup, error)
	SignOut(ctx context.Context, accountID, eventID string) error
}

// SignupHandler はイベント参加登録のHTTPハンドラー。
type SignupHandler struct {
	service SignupServiceInterface
	metrics metrics.MetricsCollector
}

// NewSignupHandler はSignupHandlerを生成する。
func NewSignupHandler(service SignupServiceInterface, collector metrics.MetricsCollector) *SignupHandler {
	return &SignupHandler{
		service: service,
		metrics: collector,
	}
}

// SignUp はイベントへの参加登録を処理する。
// POST /api/events/{id}/signup
func (h *SignupHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	eventID := chi.URLParam(r, "id")

	signup, svcErr := h.service.SignUp(r.Context(), accountID, eventID)
	if svcErr != nil {
		var apiErr *model.APIError
		if errors.As(svcErr, &apiErr) {
			h.metrics.RecordSignupDenied(apiErr.Code)
		}
		handleServiceError(w, svcErr)
		return
	}

	h.metrics.RecordSignupCreated()
	writeJSON(w, http.StatusCreated, signupResponse{
		ID:        signup.ID,
		AccountID: signup.AccountID,
		EventID:   signup.EventID,
		CreatedAt: signup.CreatedAt,
	})
}

// SignOut は自分の参加登録を取り消す。
// DELETE /api/events/{id}/signup
func (h *SignupHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	eventID := chi.URLParam(r, "id")

	if err := h.service.SignOut(r.Context(), accountID, eventID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
