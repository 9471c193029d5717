package handler

import (
	"context"
	"time"

	"github.com/hitoshi/commcal/internal/account"
	"github.com/hitoshi/commcal/internal/event"
	"github.com/hitoshi/commcal/internal/feedback"
	"github.com/hitoshi/commcal/internal/metrics"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// --- モック定義 ---

type mockEventService struct {
	createFn       func(ctx context.Context, input event.EventInput) (*model.Event, model.ValidationErrors, error)
	updateFn       func(ctx context.Context, id string, input event.EventInput) (*model.Event, model.ValidationErrors, error)
	deleteFn       func(ctx context.Context, id string) error
	getFn          func(ctx context.Context, id string) (*model.Event, error)
	getMonthViewFn func(ctx context.Context, year int, month time.Month, categories []model.Category) (*event.MonthView, error)
	getDashboardFn func(ctx context.Context, accountID string) (*event.Dashboard, error)
}

var _ EventServiceInterface = (*mockEventService)(nil)

func (m *mockEventService) Create(ctx context.Context, input event.EventInput) (*model.Event, model.ValidationErrors, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil, nil
}

func (m *mockEventService) Update(ctx context.Context, id string, input event.EventInput) (*model.Event, model.ValidationErrors, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, input)
	}
	return nil, nil, nil
}

func (m *mockEventService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockEventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEventService) GetMonthView(ctx context.Context, year int, month time.Month, categories []model.Category) (*event.MonthView, error) {
	if m.getMonthViewFn != nil {
		return m.getMonthViewFn(ctx, year, month, categories)
	}
	return &event.MonthView{Year: year, Month: month, SignupCounts: map[string]int{}}, nil
}

func (m *mockEventService) GetDashboard(ctx context.Context, accountID string) (*event.Dashboard, error) {
	if m.getDashboardFn != nil {
		return m.getDashboardFn(ctx, accountID)
	}
	return &event.Dashboard{}, nil
}

type mockSignupService struct {
	signUpFn  func(ctx context.Context, accountID, eventID string) (*model.Signup, error)
	signOutFn func(ctx context.Context, accountID, eventID string) error
}

var _ SignupServiceInterface = (*mockSignupService)(nil)

func (m *mockSignupService) SignUp(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, accountID, eventID)
	}
	return &model.Signup{ID: "signup-1", AccountID: accountID, EventID: eventID}, nil
}

func (m *mockSignupService) SignOut(ctx context.Context, accountID, eventID string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, accountID, eventID)
	}
	return nil
}

type mockFeedbackService struct {
	submitFn     func(ctx context.Context, accountID, eventID, comments string) (*model.Feedback, error)
	forAccountFn func(ctx context.Context, accountID, eventID string) (*model.Feedback, error)
	monthIndexFn func(ctx context.Context, year int, month time.Month) ([]feedback.EventFeedbacks, error)
}

var _ FeedbackServiceInterface = (*mockFeedbackService)(nil)

func (m *mockFeedbackService) Submit(ctx context.Context, accountID, eventID, comments string) (*model.Feedback, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, accountID, eventID, comments)
	}
	return &model.Feedback{ID: "fb-1", AccountID: accountID, EventID: eventID, Comments: comments}, nil
}

func (m *mockFeedbackService) ForAccount(ctx context.Context, accountID, eventID string) (*model.Feedback, error) {
	if m.forAccountFn != nil {
		return m.forAccountFn(ctx, accountID, eventID)
	}
	return nil, nil
}

func (m *mockFeedbackService) MonthIndex(ctx context.Context, year int, month time.Month) ([]feedback.EventFeedbacks, error) {
	if m.monthIndexFn != nil {
		return m.monthIndexFn(ctx, year, month)
	}
	return nil, nil
}

type mockAccountService struct {
	createAdminFn  func(ctx context.Context, email string) (*model.Account, *model.APIError)
	removeAdminFn  func(ctx context.Context, actorID, targetID string) error
	listAdminsFn   func(ctx context.Context) ([]*model.Account, error)
	getDirectoryFn func(ctx context.Context) (*account.Directory, error)
	getAvatarFn    func(ctx context.Context, accountID string) ([]byte, string, error)
}

var _ AccountServiceInterface = (*mockAccountService)(nil)

func (m *mockAccountService) CreateAdmin(ctx context.Context, email string) (*model.Account, *model.APIError) {
	if m.createAdminFn != nil {
		return m.createAdminFn(ctx, email)
	}
	return &model.Account{ID: "acct-new", Email: email, Role: model.RoleAdmin}, nil
}

func (m *mockAccountService) RemoveAdmin(ctx context.Context, actorID, targetID string) error {
	if m.removeAdminFn != nil {
		return m.removeAdminFn(ctx, actorID, targetID)
	}
	return nil
}

func (m *mockAccountService) ListAdmins(ctx context.Context) ([]*model.Account, error) {
	if m.listAdminsFn != nil {
		return m.listAdminsFn(ctx)
	}
	return nil, nil
}

func (m *mockAccountService) GetDirectory(ctx context.Context) (*account.Directory, error) {
	if m.getDirectoryFn != nil {
		return m.getDirectoryFn(ctx)
	}
	return &account.Directory{}, nil
}

func (m *mockAccountService) GetAvatar(ctx context.Context, accountID string) ([]byte, string, error) {
	if m.getAvatarFn != nil {
		return m.getAvatarFn(ctx, accountID)
	}
	return nil, "", nil
}

type mockRosterLister struct {
	rosterFn func(ctx context.Context, eventID string) ([]repository.SignupWithAccount, error)
}

var _ RosterLister = (*mockRosterLister)(nil)

func (m *mockRosterLister) Roster(ctx context.Context, eventID string) ([]repository.SignupWithAccount, error) {
	if m.rosterFn != nil {
		return m.rosterFn(ctx, eventID)
	}
	return nil, nil
}

type mockEventFinder struct {
	getFn     func(ctx context.Context, id string) (*model.Event, error)
	listAllFn func(ctx context.Context) ([]*model.Event, error)
}

var _ EventFinder = (*mockEventFinder)(nil)

func (m *mockEventFinder) Get(ctx context.Context, id string) (*model.Event, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEventFinder) ListAll(ctx context.Context) ([]*model.Event, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

// mockMetrics は呼び出し回数だけを数えるメトリクスコレクター。
type mockMetrics struct {
	signupsCreated    int
	signupsDenied     int
	lastDenialReason  string
	feedbackUpserted  int
	feedbackDenied    int
	eventsCreated     int
	lastEventCategory string
	httpStatuses      []int
	latencies         int
}

var _ metrics.MetricsCollector = (*mockMetrics)(nil)

func (m *mockMetrics) RecordSignupCreated() { m.signupsCreated++ }
func (m *mockMetrics) RecordSignupDenied(reason string) {
	m.signupsDenied++
	m.lastDenialReason = reason
}
func (m *mockMetrics) RecordFeedbackUpserted() { m.feedbackUpserted++ }
func (m *mockMetrics) RecordFeedbackDenied()   { m.feedbackDenied++ }
func (m *mockMetrics) RecordEventCreated(category string) {
	m.eventsCreated++
	m.lastEventCategory = category
}
func (m *mockMetrics) RecordHTTPStatus(statusCode int) {
	m.httpStatuses = append(m.httpStatuses, statusCode)
}
func (m *mockMetrics) RecordRequestLatency(duration time.Duration) { m.latencies++ }
