package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/feedback"
	"github.com/hitoshi/commcal/internal/metrics"
	"github.com/hitoshi/commcal/internal/model"
)

// FeedbackServiceInterface はフィードバックハンドラーが必要とするサービスインターフェース。
type FeedbackServiceInterface interface {
	Submit(ctx context.Context, accountID, eventID, comments string) (*model.Feedback, error)
	ForAccount(ctx context.Context, accountID, eventID string) (*model.Feedback, error)
	MonthIndex(ctx context.Context, year int, month time.Month) ([]feedback.EventFeedbacks, error)
}

// FeedbackHandler はイベントフィードバックのHTTPハンドラー。
type FeedbackHandler struct {
	service FeedbackServiceInterface
	metrics metrics.MetricsCollector
}

// NewFeedbackHandler はFeedbackHandlerを生成する。
func NewFeedbackHandler(service FeedbackServiceInterface, collector metrics.MetricsCollector) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		metrics: collector,
	}
}

// Submit はフィードバックの送信（再送信時は上書き）を処理する。
// PUT /api/events/{id}/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	eventID := chi.URLParam(r, "id")

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	fb, svcErr := h.service.Submit(r.Context(), accountID, eventID, req.Comments)
	if svcErr != nil {
		var apiErr *model.APIError
		if errors.As(svcErr, &apiErr) {
			h.metrics.RecordFeedbackDenied()
		}
		handleServiceError(w, svcErr)
		return
	}

	h.metrics.RecordFeedbackUpserted()
	writeJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

// Own はサインイン中アカウントの該当イベントへのフィードバックを返す。
// GET /api/events/{id}/feedback
func (h *FeedbackHandler) Own(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	eventID := chi.URLParam(r, "id")

	fb, err := h.service.ForAccount(r.Context(), accountID, eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if fb == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "FEEDBACK_NOT_FOUND",
			Message:  "You have not left feedback for this event.",
			Category: "not_found",
			Action:   "Submit feedback first.",
		})
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

// feedbackAuthorResponse は投稿者情報付きフィードバックのレスポンス。
type feedbackAuthorResponse struct {
	feedbackResponse
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// eventFeedbacksResponse はイベントごとのフィードバック一覧レスポンス。
type eventFeedbacksResponse struct {
	Event     eventResponse            `json:"event"`
	Feedbacks []feedbackAuthorResponse `json:"feedbacks"`
}

// MonthIndex は指定月のイベントごとのフィードバック一覧を返す。管理者専用。
// GET /api/feedbacks?year=2026&month=3
// 年月が未指定または不正な場合は現在の月にフォールバックする。
func (h *FeedbackHandler) MonthIndex(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r, time.Now())

	groups, err := h.service.MonthIndex(r.Context(), year, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]eventFeedbacksResponse, len(groups))
	for i, group := range groups {
		entries := make([]feedbackAuthorResponse, len(group.Feedbacks))
		for j, fa := range group.Feedbacks {
			entries[j] = feedbackAuthorResponse{
				feedbackResponse: toFeedbackResponse(&fa.Feedback),
				AuthorName:       fa.AuthorName,
				AuthorEmail:      fa.AuthorEmail,
			}
		}
		result[i] = eventFeedbacksResponse{
			Event:     toEventResponse(group.Event),
			Feedbacks: entries,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// toFeedbackResponse はmodel.FeedbackからAPIレスポンスに変換する。
func toFeedbackResponse(fb *model.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:          fb.ID,
		EventID:     fb.EventID,
		Comments:    fb.Comments,
		SubmittedAt: fb.SubmittedAt,
	}
}
