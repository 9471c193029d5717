// Package feedback はイベント終了後のフィードバックのドメインロジックを提供する。
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
	"github.com/hitoshi/commcal/internal/security"
)

// Service はフィードバックのサービス層。
type Service struct {
	feedbackRepo repository.FeedbackRepository
	signupRepo   repository.SignupRepository
	eventRepo    repository.EventRepository
	sanitizer    security.CommentSanitizerService
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	feedbackRepo repository.FeedbackRepository,
	signupRepo repository.SignupRepository,
	eventRepo repository.EventRepository,
	sanitizer security.CommentSanitizerService,
) *Service {
	return &Service{
		feedbackRepo: feedbackRepo,
		signupRepo:   signupRepo,
		eventRepo:    eventRepo,
		sanitizer:    sanitizer,
		now:          time.Now,
	}
}

// Submit はフィードバックを提出する。
//
// 適格性は3条件（認証済み・イベントが開催済み・参加登録あり）の全てを
// 満たす場合のみ認める。どの条件が欠けても利用者には同一の拒否メッセージを
// 返し、詳細な理由はログにのみ記録する。
//
// 同じ(account, event)への再提出は既存フィードバックの上書きとなり、
// 新しい行は作られない。ストレージ障害は適格性判定と混ぜず、
// そのままエラーとして伝播させる。
func (s *Service) Submit(ctx context.Context, accountID, eventID, comments string) (*model.Feedback, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(eventID)
	}

	signup, err := s.signupRepo.FindByAccountAndEvent(ctx, accountID, eventID)
	if err != nil {
		return nil, fmt.Errorf("参加登録の取得に失敗しました: %w", err)
	}

	now := s.now()
	if !model.FeedbackEligible(accountID != "", event, signup != nil, now) {
		// 拒否理由は開示せず、ログにのみ残す
		slog.Info("feedback denied",
			slog.String("account_id", accountID),
			slog.String("event_id", eventID),
			slog.Bool("event_past", event.IsPast(now)),
			slog.Bool("has_signup", signup != nil),
		)
		return nil, model.NewFeedbackNotEligibleError()
	}

	fb := &model.Feedback{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		EventID:     eventID,
		Comments:    s.sanitizer.Sanitize(comments),
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := fb.Validate(); errs != nil {
		return nil, errs
	}

	stored, err := s.feedbackRepo.Upsert(ctx, fb)
	if err != nil {
		return nil, fmt.Errorf("フィードバックの保存に失敗しました: %w", err)
	}

	slog.Info("feedback submitted",
		slog.String("account_id", accountID),
		slog.String("event_id", eventID),
		slog.String("feedback_id", stored.ID),
	)

	return stored, nil
}

// ForAccount は指定のアカウントとイベントの組み合わせの自分のフィードバックを返す。
// 未提出の場合はnilを返す。
func (s *Service) ForAccount(ctx context.Context, accountID, eventID string) (*model.Feedback, error) {
	fb, err := s.feedbackRepo.FindByAccountAndEvent(ctx, accountID, eventID)
	if err != nil {
		return nil, fmt.Errorf("フィードバックの取得に失敗しました: %w", err)
	}
	return fb, nil
}

// EventFeedbacks はイベントとそのフィードバック一覧の組。
type EventFeedbacks struct {
	Event     *model.Event
	Feedbacks []repository.FeedbackWithAuthor
}

// MonthIndex は指定月に開催されたイベントのフィードバック一覧を返す。
// フィードバックが1件もないイベントは含めない。管理者の月次レビュー用。
func (s *Service) MonthIndex(ctx context.Context, year int, month time.Month) ([]EventFeedbacks, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	events, err := s.eventRepo.ListBetween(ctx, from, to, nil)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}

	var results []EventFeedbacks
	for _, event := range events {
		feedbacks, err := s.feedbackRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("フィードバック一覧の取得に失敗しました: %w", err)
		}
		if len(feedbacks) == 0 {
			continue
		}
		results = append(results, EventFeedbacks{Event: event, Feedbacks: feedbacks})
	}

	return results, nil
}
