// Package event はイベント管理とカレンダー表示のドメインロジックを提供する。
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// dashboardLimit はダッシュボードに表示するイベント件数の上限。
const dashboardLimit = 10

// Service はイベント管理のサービス層。
type Service struct {
	eventRepo  repository.EventRepository
	signupRepo repository.SignupRepository
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(eventRepo repository.EventRepository, signupRepo repository.SignupRepository) *Service {
	return &Service{
		eventRepo:  eventRepo,
		signupRepo: signupRepo,
		now:        time.Now,
	}
}

// EventInput はイベントの作成・更新の入力。
type EventInput struct {
	Title       string
	EventDate   time.Time
	Description string
	Location    string
	Category    model.Category
}

// Create はイベントを新規作成する。保存前に不変条件を検証する。
func (s *Service) Create(ctx context.Context, input EventInput) (*model.Event, model.ValidationErrors, error) {
	now := s.now()
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       input.Title,
		EventDate:   input.EventDate,
		Description: input.Description,
		Location:    input.Location,
		Category:    input.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := event.Validate(now); errs != nil {
		return nil, errs, nil
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("イベントの作成に失敗しました: %w", err)
	}

	slog.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("category", string(event.Category)),
	)

	return event, nil, nil
}

// Update はイベントを更新する。作成時と同じ検証を保存のたびに再評価する。
func (s *Service) Update(ctx context.Context, id string, input EventInput) (*model.Event, model.ValidationErrors, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return nil, nil, model.NewEventNotFoundError(id)
	}

	now := s.now()
	event.Title = input.Title
	event.EventDate = input.EventDate
	event.Description = input.Description
	event.Location = input.Location
	event.Category = input.Category
	event.UpdatedAt = now

	if errs := event.Validate(now); errs != nil {
		return nil, errs, nil
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("イベントの更新に失敗しました: %w", err)
	}

	return event, nil, nil
}

// Delete はイベントを削除する。参加登録とフィードバックは連鎖削除される。
func (s *Service) Delete(ctx context.Context, id string) error {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return model.NewEventNotFoundError(id)
	}

	if err := s.eventRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("イベントの削除に失敗しました: %w", err)
	}

	slog.Info("event deleted", slog.String("event_id", id))
	return nil
}

// Get は指定IDのイベントを取得する。見つからない場合はAPIErrorを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(id)
	}
	return event, nil
}

// CalendarDay は月間カレンダーの1マスを表す。
type CalendarDay struct {
	Date       time.Time
	Events     []*model.Event
	Today      bool
	OtherMonth bool
}

// MonthView は月間カレンダーの表示データ。
type MonthView struct {
	Year         int
	Month        time.Month
	Weeks        [][]CalendarDay
	SignupCounts map[string]int
}

// GetMonthView は指定月の月間カレンダーを組み立てる。
// グリッドは日曜始まりで、月初・月末を含む週の前後の日も埋める。
// categoriesが空でない場合は該当カテゴリのイベントのみを含める。
func (s *Service) GetMonthView(ctx context.Context, year int, month time.Month, categories []model.Category) (*MonthView, error) {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	// 日曜始まりのグリッド境界
	gridStart := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	gridEnd := lastOfMonth.AddDate(0, 0, 6-int(lastOfMonth.Weekday()))

	events, err := s.eventRepo.ListBetween(ctx, gridStart, gridEnd.AddDate(0, 0, 1), categories)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}

	// 日付ごとにイベントをまとめる
	byDay := make(map[string][]*model.Event)
	eventIDs := make([]string, 0, len(events))
	for _, e := range events {
		key := e.EventDate.Format("2006-01-02")
		byDay[key] = append(byDay[key], e)
		eventIDs = append(eventIDs, e.ID)
	}

	counts, err := s.signupRepo.CountByEvents(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("参加登録数の取得に失敗しました: %w", err)
	}

	today := s.now().Format("2006-01-02")

	var weeks [][]CalendarDay
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 7) {
		week := make([]CalendarDay, 7)
		for i := 0; i < 7; i++ {
			d := day.AddDate(0, 0, i)
			key := d.Format("2006-01-02")
			week[i] = CalendarDay{
				Date:       d,
				Events:     byDay[key],
				Today:      key == today,
				OtherMonth: d.Month() != month,
			}
		}
		weeks = append(weeks, week)
	}

	return &MonthView{
		Year:         year,
		Month:        month,
		Weeks:        weeks,
		SignupCounts: counts,
	}, nil
}

// Dashboard はアカウントのダッシュボード表示データ。
type Dashboard struct {
	Upcoming []*model.Event // 開催時刻昇順、最大10件
	Past     []*model.Event // 開催時刻降順、最大10件
}

// GetDashboard は参加登録済みイベントの今後・過去の一覧を返す。
func (s *Service) GetDashboard(ctx context.Context, accountID string) (*Dashboard, error) {
	now := s.now()

	upcoming, err := s.eventRepo.ListSignedUpAfter(ctx, accountID, now, dashboardLimit)
	if err != nil {
		return nil, fmt.Errorf("今後のイベントの取得に失敗しました: %w", err)
	}

	past, err := s.eventRepo.ListSignedUpBefore(ctx, accountID, now, dashboardLimit)
	if err != nil {
		return nil, fmt.Errorf("過去のイベントの取得に失敗しました: %w", err)
	}

	return &Dashboard{Upcoming: upcoming, Past: past}, nil
}

// ListAll は全イベントを開催時刻昇順で返す。カレンダー配信用。
func (s *Service) ListAll(ctx context.Context) ([]*model.Event, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	return events, nil
}
