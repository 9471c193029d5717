package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/account"
	"github.com/hitoshi/commcal/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	CreateAdmin(ctx context.Context, email string) (*model.Account, *model.APIError)
	RemoveAdmin(ctx context.Context, actorID, targetID string) error
	ListAdmins(ctx context.Context) ([]*model.Account, error)
	GetDirectory(ctx context.Context) (*account.Directory, error)
	GetAvatar(ctx context.Context, accountID string) ([]byte, string, error)
}

// AccountHandler はアカウント・管理者管理のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// ListAdmins は管理者一覧を返す。管理者専用。
// GET /api/admins
func (h *AccountHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponses(admins))
}

// CreateAdmin は管理者アカウントを先行作成する。管理者専用。
// POST /api/admins
func (h *AccountHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, apiErr := h.service.CreateAdmin(r.Context(), req.Email)
	if apiErr != nil {
		handleAPIError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

// RemoveAdmin は管理者アカウントを削除する。管理者専用。
// DELETE /api/admins/{id}
func (h *AccountHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	actorID, err := accountIDFrom(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	targetID := chi.URLParam(r, "id")

	if err := h.service.RemoveAdmin(r.Context(), actorID, targetID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// directoryResponse は組織名簿のレスポンス。
type directoryResponse struct {
	Admins  []accountResponse `json:"admins"`
	Members []accountResponse `json:"members"`
}

// Organization はロール別の組織名簿を返す。サインイン必須。
// GET /api/organization
func (h *AccountHandler) Organization(w http.ResponseWriter, r *http.Request) {
	directory, err := h.service.GetDirectory(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, directoryResponse{
		Admins:  toAccountResponses(directory.Admins),
		Members: toAccountResponses(directory.Members),
	})
}

// Avatar はアカウントのアバター画像を返す。サインイン必須。
// GET /api/accounts/{id}/avatar
func (h *AccountHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	data, mimeType, err := h.service.GetAvatar(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(data) == 0 {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "AVATAR_NOT_FOUND",
			Message:  "This account has no avatar image.",
			Category: "not_found",
			Action:   "Nothing to do; a default image can be shown instead.",
		})
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// toAccountResponse はmodel.AccountからAPIレスポンスに変換する。
func toAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		ID:                a.ID,
		Email:             a.Email,
		FullName:          a.FullName,
		Role:              string(a.Role),
		PendingActivation: a.PendingActivation,
	}
}

func toAccountResponses(accounts []*model.Account) []accountResponse {
	result := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = toAccountResponse(a)
	}
	return result
}
