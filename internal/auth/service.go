// Package auth はOAuth認証フロー、アカウントのプロビジョニング、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Provider       string // "google" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// AvatarFetcher はプロフィール画像の取得インターフェース。
type AvatarFetcher interface {
	// Fetch は画像URLから画像データとMIMEタイプを取得する。
	Fetch(ctx context.Context, rawURL string) (data []byte, mimeType string, err error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	avatars     AvatarFetcher // nilの場合はアバター取得をスキップ
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	avatars AvatarFetcher,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		avatars:     avatars,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
//
// アカウントはメールアドレスの大文字小文字を区別しない一致で照合する。
// 既存アカウントが見つかった場合はプロバイダー由来の属性（認証UID・氏名・
// アバターURL）で上書きし、仮登録フラグを解除する。ロールとIDは保持されるため、
// 事前にメールアドレスで作成された管理者は初回ログインで管理者のままになる。
// 見つからない場合はmemberロールの新規アカウントを作成する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. メールアドレスで既存アカウントを検索
	account, err := s.accountRepo.FindByEmail(ctx, userInfo.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	now := time.Now()

	if account != nil {
		// 3a. 既存アカウント: プロバイダー由来の属性で上書きし、仮登録を解除
		account.AuthUID = userInfo.ProviderUserID
		account.FullName = userInfo.Name
		account.AvatarURL = userInfo.AvatarURL
		account.PendingActivation = false
		account.UpdatedAt = now

		if err := s.accountRepo.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}

		slog.Info("existing account logged in",
			slog.String("account_id", account.ID),
			slog.String("role", string(account.Role)),
			slog.String("provider", userInfo.Provider),
		)
	} else {
		// 3b. 新規アカウント: memberロールで自動作成
		account = &model.Account{
			ID:        uuid.New().String(),
			Email:     userInfo.Email,
			FullName:  userInfo.Name,
			Role:      model.RoleMember,
			AuthUID:   userInfo.ProviderUserID,
			AvatarURL: userInfo.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}

		slog.Info("new account created",
			slog.String("account_id", account.ID),
			slog.String("email", userInfo.Email),
			slog.String("provider", userInfo.Provider),
		)
	}

	// 4. アバター画像を取得して保存。失敗してもログイン自体は成功させる。
	s.storeAvatar(ctx, account.ID, userInfo.AvatarURL)

	// 5. セッションを発行
	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// storeAvatar はプロフィール画像を取得してアカウントに保存する。
// 画像の取得失敗は警告ログに留め、呼び出し元には伝播しない。
func (s *Service) storeAvatar(ctx context.Context, accountID, avatarURL string) {
	if s.avatars == nil || avatarURL == "" {
		return
	}

	data, mimeType, err := s.avatars.Fetch(ctx, avatarURL)
	if err != nil {
		slog.Warn("failed to fetch avatar",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.accountRepo.UpdateAvatar(ctx, accountID, data, mimeType); err != nil {
		slog.Warn("failed to store avatar",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
	}
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("account logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentAccount はセッションから現在のアカウントを取得する。
func (s *Service) GetCurrentAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	account, err := s.accountRepo.FindByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found")
	}

	return account, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, accountID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
