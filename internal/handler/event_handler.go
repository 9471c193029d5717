package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/event"
	"github.com/hitoshi/commcal/internal/metrics"
	"github.com/hitoshi/commcal/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	Create(ctx context.Context, input event.EventInput) (*model.Event, model.ValidationErrors, error)
	Update(ctx context.Context, id string, input event.EventInput) (*model.Event, model.ValidationErrors, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Event, error)
	GetMonthView(ctx context.Context, year int, month time.Month, categories []model.Category) (*event.MonthView, error)
	GetDashboard(ctx context.Context, accountID string) (*event.Dashboard, error)
}

// EventHandler はイベント管理のHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
	metrics metrics.MetricsCollector
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface, collector metrics.MetricsCollector) *EventHandler {
	return &EventHandler{
		service: service,
		metrics: collector,
	}
}

// calendarDayResponse は月間カレンダーの1日分のレスポンス。
type calendarDayResponse struct {
	Date       string          `json:"date"`
	Events     []eventResponse `json:"events"`
	Today      bool            `json:"today"`
	OtherMonth bool            `json:"other_month"`
}

// monthViewResponse は月間カレンダーのレスポンス。
type monthViewResponse struct {
	Year         int                     `json:"year"`
	Month        int                     `json:"month"`
	Weeks        [][]calendarDayResponse `json:"weeks"`
	SignupCounts map[string]int          `json:"signup_counts"`
}

// ListMonth は月間カレンダーを返す。
// GET /api/events?year=2026&month=3&category=Service&category=Social
// 年月が未指定または不正な場合は現在の月を表示する。
func (h *EventHandler) ListMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := parseYearMonth(r, now)

	var categories []model.Category
	for _, raw := range r.URL.Query()["category"] {
		c := model.Category(raw)
		if c.Valid() {
			categories = append(categories, c)
		}
	}

	view, err := h.service.GetMonthView(r.Context(), year, month, categories)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	weeks := make([][]calendarDayResponse, len(view.Weeks))
	for i, week := range view.Weeks {
		days := make([]calendarDayResponse, len(week))
		for j, day := range week {
			events := make([]eventResponse, len(day.Events))
			for k, e := range day.Events {
				events[k] = toEventResponse(e)
			}
			days[j] = calendarDayResponse{
				Date:       day.Date.Format("2006-01-02"),
				Events:     events,
				Today:      day.Today,
				OtherMonth: day.OtherMonth,
			}
		}
		weeks[i] = days
	}

	writeJSON(w, http.StatusOK, monthViewResponse{
		Year:         view.Year,
		Month:        int(view.Month),
		Weeks:        weeks,
		SignupCounts: view.SignupCounts,
	})
}

// Get はイベント詳細を返す。
// GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	ev, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if ev == nil {
		handleAPIError(w, model.NewEventNotFoundError(eventID))
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

// Create はイベントを作成する。管理者専用。
// POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeEventInput(w, r)
	if !ok {
		return
	}

	ev, verrs, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if verrs != nil {
		writeValidationErrors(w, verrs)
		return
	}

	h.metrics.RecordEventCreated(string(ev.Category))
	writeJSON(w, http.StatusCreated, toEventResponse(ev))
}

// Update はイベントを更新する。管理者専用。
// PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	input, ok := h.decodeEventInput(w, r)
	if !ok {
		return
	}

	ev, verrs, err := h.service.Update(r.Context(), eventID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if verrs != nil {
		writeValidationErrors(w, verrs)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

// Delete はイベントを削除する。参加登録とフィードバックも連鎖削除される。
// DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), eventID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// dashboardResponse は参加登録済みイベントのダッシュボードレスポンス。
type dashboardResponse struct {
	Upcoming []eventResponse `json:"upcoming"`
	Past     []eventResponse `json:"past"`
}

// Dashboard はサインイン中アカウントの参加予定・参加済みイベントを返す。
// GET /api/dashboard
func (h *EventHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	dashboard, err := h.service.GetDashboard(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Upcoming: toEventResponses(dashboard.Upcoming),
		Past:     toEventResponses(dashboard.Past),
	})
}

// decodeEventInput はイベントリクエストボディを解析・検証する。
func (h *EventHandler) decodeEventInput(w http.ResponseWriter, r *http.Request) (event.EventInput, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return event.EventInput{}, false
	}

	if verrs := validateRequest(req); verrs != nil {
		writeValidationErrors(w, verrs)
		return event.EventInput{}, false
	}

	return event.EventInput{
		Title:       req.Title,
		EventDate:   req.EventDate,
		Description: req.Description,
		Location:    req.Location,
		Category:    model.Category(req.Category),
	}, true
}

// parseYearMonth はクエリパラメータから年月を取り出す。不正な値は現在の年月で補う。
func parseYearMonth(r *http.Request, now time.Time) (int, time.Month) {
	year := now.Year()
	month := now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			year = v
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 12 {
			month = time.Month(v)
		}
	}
	return year, month
}

// toEventResponse はmodel.EventからAPIレスポンスに変換する。
func toEventResponse(ev *model.Event) eventResponse {
	return eventResponse{
		ID:          ev.ID,
		Title:       ev.Title,
		EventDate:   ev.EventDate,
		Description: ev.Description,
		Location:    ev.Location,
		Category:    string(ev.Category),
	}
}

func toEventResponses(events []*model.Event) []eventResponse {
	result := make([]eventResponse, len(events))
	for i, ev := range events {
		result[i] = toEventResponse(ev)
	}
	return result
}
