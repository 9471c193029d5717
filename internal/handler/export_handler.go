package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/export"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// EventFinder はエクスポートハンドラーが必要とするイベント検索インターフェース。
type EventFinder interface {
	Get(ctx context.Context, id string) (*model.Event, error)
	ListAll(ctx context.Context) ([]*model.Event, error)
}

// RosterLister は参加者名簿の取得インターフェース。
type RosterLister interface {
	Roster(ctx context.Context, eventID string) ([]repository.SignupWithAccount, error)
}

// ExportHandler はCSV・共有リンク・iCalendarエクスポートのHTTPハンドラー。
type ExportHandler struct {
	events  EventFinder
	roster  RosterLister
	baseURL string
	now     func() time.Time
}

// NewExportHandler はExportHandlerを生成する。
func NewExportHandler(events EventFinder, roster RosterLister, baseURL string) *ExportHandler {
	return &ExportHandler{
		events:  events,
		roster:  roster,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// RosterCSV は参加者名簿のCSVをダウンロードさせる。管理者専用。
// GET /api/events/{id}/export.csv
func (h *ExportHandler) RosterCSV(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	ev, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if ev == nil {
		handleAPIError(w, model.NewEventNotFoundError(eventID))
		return
	}

	signups, err := h.roster.Roster(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data, err := export.RosterCSV(ev, signups)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.RosterFilename(ev, h.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// shareResponse はイベント共有リンクのレスポンス。
type shareResponse struct {
	URL    string `json:"url"`
	QRCode string `json:"qr_code"` // data:image/png;base64 URI
}

// Share はイベントの共有リンクとQRコードを返す。
// GET /api/events/{id}/share
func (h *ExportHandler) Share(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	ev, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if ev == nil {
		handleAPIError(w, model.NewEventNotFoundError(eventID))
		return
	}

	shareURL := export.ShareURL(h.baseURL, ev.ID)
	qr, err := export.QRCodeDataURI(shareURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{
		URL:    shareURL,
		QRCode: qr,
	})
}

// Calendar は全イベントのiCalendarを返す。
// GET /api/calendar.ics
func (h *ExportHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="commcal.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.BuildCalendar(events)))
}
