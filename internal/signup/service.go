// Package signup はイベントへの参加登録・取消のドメインロジックを提供する。
package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// Service は参加登録のサービス層。
type Service struct {
	signupRepo repository.SignupRepository
	eventRepo  repository.EventRepository
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(signupRepo repository.SignupRepository, eventRepo repository.EventRepository) *Service {
	return &Service{
		signupRepo: signupRepo,
		eventRepo:  eventRepo,
		now:        time.Now,
	}
}

// SignUp はイベントへの参加登録を行う。
//
// 適格性の判定は重複チェック→開催済みチェックの順。
// 事前チェックをすり抜けた並行登録はストレージの一意制約で弾かれ、
// 同じ重複拒否に写像される。ストレージ障害は適格性判定と混ぜず、
// そのままエラーとして伝播させる。
func (s *Service) SignUp(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(eventID)
	}

	existing, err := s.signupRepo.FindByAccountAndEvent(ctx, accountID, eventID)
	if err != nil {
		return nil, fmt.Errorf("参加登録の取得に失敗しました: %w", err)
	}

	if apiErr := model.ValidateSignup(event, existing != nil, s.now()); apiErr != nil {
		return nil, apiErr
	}

	signup := &model.Signup{
		ID:        uuid.New().String(),
		AccountID: accountID,
		EventID:   eventID,
		CreatedAt: s.now(),
	}

	if err := s.signupRepo.Create(ctx, signup); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateSignupError()
		}
		return nil, fmt.Errorf("参加登録の保存に失敗しました: %w", err)
	}

	slog.Info("signup created",
		slog.String("account_id", accountID),
		slog.String("event_id", eventID),
	)

	return signup, nil
}

// SignOut は自分の参加登録を取り消す。登録が存在しない場合は拒否する。
func (s *Service) SignOut(ctx context.Context, accountID, eventID string) error {
	deleted, err := s.signupRepo.DeleteByAccountAndEvent(ctx, accountID, eventID)
	if err != nil {
		return fmt.Errorf("参加登録の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotSignedUpError()
	}

	slog.Info("signup cancelled",
		slog.String("account_id", accountID),
		slog.String("event_id", eventID),
	)

	return nil
}

// HasSignup は指定のアカウントとイベントの組み合わせの参加登録が存在するかを返す。
func (s *Service) HasSignup(ctx context.Context, accountID, eventID string) (bool, error) {
	signup, err := s.signupRepo.FindByAccountAndEvent(ctx, accountID, eventID)
	if err != nil {
		return false, fmt.Errorf("参加登録の取得に失敗しました: %w", err)
	}
	return signup != nil, nil
}

// Roster はイベントの参加者名簿を登録順で返す。
func (s *Service) Roster(ctx context.Context, eventID string) ([]repository.SignupWithAccount, error) {
	signups, err := s.signupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("参加者名簿の取得に失敗しました: %w", err)
	}
	return signups, nil
}
