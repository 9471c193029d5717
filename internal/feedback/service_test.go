package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
	"github.com/hitoshi/commcal/internal/security"
)

// --- モック定義 ---

type mockFeedbackRepo struct {
	findByAccountAndEventFn func(ctx context.Context, accountID, eventID string) (*model.Feedback, error)
	upsertFn                func(ctx context.Context, fb *model.Feedback) (*model.Feedback, error)
	listByEventFn           func(ctx context.Context, eventID string) ([]repository.FeedbackWithAuthor, error)
}

func (m *mockFeedbackRepo) FindByAccountAndEvent(ctx context.Context, accountID, eventID string) (*model.Feedback, error) {
	if m.findByAccountAndEventFn != nil {
		return m.findByAccountAndEventFn(ctx, accountID, eventID)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) Upsert(ctx context.Context, fb *model.Feedback) (*model.Feedback, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, fb)
	}
	return fb, nil
}

func (m *mockFeedbackRepo) ListByEvent(ctx context.Context, eventID string) ([]repository.FeedbackWithAuthor, error) {
	if m.listByEventFn != nil {
		return m.listByEventFn(ctx, eventID)
	}
	return nil, nil
}

type mockSignupRepo struct {
	findByAccountAndEventFn func(ctx context.Context, accountID, eventID string) (*model.Signup, error)
}

func (m *mockSignupRepo) Create(_ context.Context, _ *model.Signup) error { return nil }

func (m *mockSignupRepo) FindByAccountAndEvent(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
	if m.findByAccountAndEventFn != nil {
		return m.findByAccountAndEventFn(ctx, accountID, eventID)
	}
	return nil, nil
}

func (m *mockSignupRepo) DeleteByAccountAndEvent(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (m *mockSignupRepo) ListByEvent(_ context.Context, _ string) ([]repository.SignupWithAccount, error) {
	return nil, nil
}

func (m *mockSignupRepo) CountByEvents(_ context.Context, _ []string) (map[string]int, error) {
	return map[string]int{}, nil
}

type mockEventRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.Event, error)
	listBetweenFn func(ctx context.Context, from, to time.Time, categories []model.Category) ([]*model.Event, error)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEventRepo) Create(_ context.Context, _ *model.Event) error { return nil }
func (m *mockEventRepo) Update(_ context.Context, _ *model.Event) error { return nil }
func (m *mockEventRepo) DeleteByID(_ context.Context, _ string) error   { return nil }

func (m *mockEventRepo) ListBetween(ctx context.Context, from, to time.Time, categories []model.Category) ([]*model.Event, error) {
	if m.listBetweenFn != nil {
		return m.listBetweenFn(ctx, from, to, categories)
	}
	return nil, nil
}

func (m *mockEventRepo) ListAll(_ context.Context) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockEventRepo) ListSignedUpBefore(_ context.Context, _ string, _ time.Time, _ int) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockEventRepo) ListSignedUpAfter(_ context.Context, _ string, _ time.Time, _ int) ([]*model.Event, error) {
	return nil, nil
}

var _ repository.FeedbackRepository = (*mockFeedbackRepo)(nil)
var _ repository.SignupRepository = (*mockSignupRepo)(nil)
var _ repository.EventRepository = (*mockEventRepo)(nil)

func newTestService(
	feedbackRepo *mockFeedbackRepo,
	signupRepo *mockSignupRepo,
	eventRepo *mockEventRepo,
	now time.Time,
) *Service {
	svc := NewService(feedbackRepo, signupRepo, eventRepo, security.NewCommentSanitizer())
	svc.now = func() time.Time { return now }
	return svc
}

func pastEventRepo(eventDate time.Time) *mockEventRepo {
	return &mockEventRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Title: "Event", EventDate: eventDate}, nil
		},
	}
}

func signedUpRepo() *mockSignupRepo {
	return &mockSignupRepo{
		findByAccountAndEventFn: func(_ context.Context, accountID, eventID string) (*model.Signup, error) {
			return &model.Signup{ID: "signup-1", AccountID: accountID, EventID: eventID}, nil
		},
	}
}

// --- テスト ---

// 3条件を満たす提出が成功することを検証
func TestSubmit_Succeeds(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	var persisted *model.Feedback
	feedbackRepo := &mockFeedbackRepo{
		upsertFn: func(_ context.Context, fb *model.Feedback) (*model.Feedback, error) {
			persisted = fb
			return fb, nil
		},
	}
	svc := newTestService(feedbackRepo, signedUpRepo(), pastEventRepo(now.Add(-24*time.Hour)), now)

	fb, err := svc.Submit(context.Background(), "account-1", "event-1", "Great day out!")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if persisted == nil {
		t.Fatal("expected feedback to be persisted")
	}
	if fb.Comments != "Great day out!" {
		t.Errorf("Comments = %q", fb.Comments)
	}
	if !fb.SubmittedAt.Equal(now) {
		t.Errorf("SubmittedAt = %v, want %v", fb.SubmittedAt, now)
	}
}

// コメントがサニタイズされてから保存されることを検証
func TestSubmit_SanitizesComments(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	svc := newTestService(&mockFeedbackRepo{}, signedUpRepo(), pastEventRepo(now.Add(-time.Hour)), now)

	fb, err := svc.Submit(context.Background(), "account-1", "event-1",
		`<script>alert("xss")</script><b>Loved it</b>`)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if fb.Comments != "Loved it" {
		t.Errorf("Comments = %q, want %q", fb.Comments, "Loved it")
	}
}

// 適格性の3条件をテーブルで検証。どの条件が欠けても同一の拒否メッセージになる。
func TestSubmit_EligibilityGate(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		accountID  string
		eventDate  time.Time
		hasSignup  bool
	}{
		{"unauthenticated", "", now.Add(-time.Hour), true},
		{"event not yet occurred", "account-1", now.Add(time.Hour), true},
		{"event at exact instant", "account-1", now, true},
		{"no signup", "account-1", now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signupRepo := &mockSignupRepo{}
			if tt.hasSignup {
				signupRepo = signedUpRepo()
			}
			svc := newTestService(&mockFeedbackRepo{}, signupRepo, pastEventRepo(tt.eventDate), now)

			_, err := svc.Submit(context.Background(), tt.accountID, "event-1", "nice")
			if err == nil {
				t.Fatal("expected denial")
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want APIError", err)
			}
			if apiErr.Message != "You can only leave feedback for events you attended after they have occurred." {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}
}

// 空白のみのコメントが検証エラーになることを検証
func TestSubmit_BlankComments(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	feedbackRepo := &mockFeedbackRepo{
		upsertFn: func(_ context.Context, _ *model.Feedback) (*model.Feedback, error) {
			t.Fatal("blank feedback must not be persisted")
			return nil, nil
		},
	}
	svc := newTestService(feedbackRepo, signedUpRepo(), pastEventRepo(now.Add(-time.Hour)), now)

	_, err := svc.Submit(context.Background(), "account-1", "event-1", "   ")
	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want validation errors for blank comments", err)
	}
}

// 2000文字超のコメントが検証エラーになることを検証
func TestSubmit_CommentsTooLong(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	svc := newTestService(&mockFeedbackRepo{}, signedUpRepo(), pastEventRepo(now.Add(-time.Hour)), now)

	_, err := svc.Submit(context.Background(), "account-1", "event-1", strings.Repeat("あ", 2001))
	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want validation errors for overlong comments", err)
	}
}

// 再提出が既存行の上書きとして扱われることを検証
func TestSubmit_ResubmissionUpserts(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	// ストレージは既存行のID・作成時刻を保持した行を返す
	existingCreatedAt := now.Add(-48 * time.Hour)
	feedbackRepo := &mockFeedbackRepo{
		upsertFn: func(_ context.Context, fb *model.Feedback) (*model.Feedback, error) {
			return &model.Feedback{
				ID:          "original-id",
				AccountID:   fb.AccountID,
				EventID:     fb.EventID,
				Comments:    fb.Comments,
				SubmittedAt: fb.SubmittedAt,
				CreatedAt:   existingCreatedAt,
				UpdatedAt:   fb.UpdatedAt,
			}, nil
		},
	}
	svc := newTestService(feedbackRepo, signedUpRepo(), pastEventRepo(now.Add(-72*time.Hour)), now)

	fb, err := svc.Submit(context.Background(), "account-1", "event-1", "updated opinion")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if fb.ID != "original-id" {
		t.Errorf("ID = %q, want preserved %q", fb.ID, "original-id")
	}
	if fb.Comments != "updated opinion" {
		t.Errorf("Comments = %q, want overwritten", fb.Comments)
	}
	if !fb.CreatedAt.Equal(existingCreatedAt) {
		t.Errorf("CreatedAt = %v, want preserved %v", fb.CreatedAt, existingCreatedAt)
	}
}

// 保存時のストレージ障害が適格性の拒否に化けず、そのまま伝播することを検証
func TestSubmit_StorageFailurePropagates(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	cause := errors.New("pq: connection refused")
	feedbackRepo := &mockFeedbackRepo{
		upsertFn: func(_ context.Context, _ *model.Feedback) (*model.Feedback, error) {
			return nil, cause
		},
	}
	svc := newTestService(feedbackRepo, signedUpRepo(), pastEventRepo(now.Add(-time.Hour)), now)

	_, err := svc.Submit(context.Background(), "account-1", "event-1", "nice")
	if err == nil {
		t.Fatal("expected error for storage failure")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("storage failure must not surface as APIError, got %v", apiErr)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
}

// 翌月1日0時ちょうどのイベントが前月の月次一覧に混入しないことを検証
func TestMonthIndex_ExcludesNextMonthBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	candidates := []*model.Event{
		{ID: "march", EventDate: time.Date(2026, 3, 31, 18, 0, 0, 0, time.Local)},
		{ID: "april-midnight", EventDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)},
	}
	eventRepo := &mockEventRepo{
		listBetweenFn: func(_ context.Context, from, to time.Time, _ []model.Category) ([]*model.Event, error) {
			// リポジトリ契約どおり[from, to)で絞り込む
			var matched []*model.Event
			for _, ev := range candidates {
				if !ev.EventDate.Before(from) && ev.EventDate.Before(to) {
					matched = append(matched, ev)
				}
			}
			return matched, nil
		},
	}
	feedbackRepo := &mockFeedbackRepo{
		listByEventFn: func(_ context.Context, eventID string) ([]repository.FeedbackWithAuthor, error) {
			return []repository.FeedbackWithAuthor{{Feedback: model.Feedback{ID: "fb-" + eventID}}}, nil
		},
	}
	svc := newTestService(feedbackRepo, &mockSignupRepo{}, eventRepo, now)

	results, err := svc.MonthIndex(context.Background(), 2026, time.March)
	if err != nil {
		t.Fatalf("MonthIndex failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Event.ID != "march" {
		t.Errorf("event ID = %q, want %q", results[0].Event.ID, "march")
	}
}

// 月次フィードバック一覧がフィードバックのあるイベントのみを含むことを検証
func TestMonthIndex_SkipsEventsWithoutFeedback(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	eventRepo := &mockEventRepo{
		listBetweenFn: func(_ context.Context, from, to time.Time, _ []model.Category) ([]*model.Event, error) {
			if from.Month() != time.March || from.Day() != 1 {
				t.Errorf("from = %v, want March 1", from)
			}
			if to.Month() != time.April || to.Day() != 1 {
				t.Errorf("to = %v, want April 1", to)
			}
			return []*model.Event{{ID: "with-fb"}, {ID: "without-fb"}}, nil
		},
	}
	feedbackRepo := &mockFeedbackRepo{
		listByEventFn: func(_ context.Context, eventID string) ([]repository.FeedbackWithAuthor, error) {
			if eventID == "with-fb" {
				return []repository.FeedbackWithAuthor{
					{Feedback: model.Feedback{ID: "fb-1"}, AuthorName: "Jane Smith"},
				}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(feedbackRepo, &mockSignupRepo{}, eventRepo, now)

	results, err := svc.MonthIndex(context.Background(), 2026, time.March)
	if err != nil {
		t.Fatalf("MonthIndex failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Event.ID != "with-fb" {
		t.Errorf("event ID = %q, want %q", results[0].Event.ID, "with-fb")
	}
	if results[0].Feedbacks[0].AuthorName != "Jane Smith" {
		t.Errorf("AuthorName = %q", results[0].Feedbacks[0].AuthorName)
	}
}
