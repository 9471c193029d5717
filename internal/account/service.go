// Package account はアカウント管理（管理者の任命・解任、メンバー名簿）の
// ドメインロジックを提供する。
package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// emailPattern はメールアドレスの形式検証パターン。
var emailPattern = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d-]+(\.[a-z\d-]+)*\.[a-z]+$`)

// Service はアカウント管理のサービス層。
type Service struct {
	accountRepo repository.AccountRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(accountRepo repository.AccountRepository) *Service {
	return &Service{accountRepo: accountRepo}
}

// CreateAdmin はメールアドレス指定で管理者アカウントを先行作成する。
//
// 入力は前後の空白を除去したうえで小文字に正規化され、保存とエラーメッセージの
// 両方に正規化後の形が使われる。
// 検証は順序が固定されている：空チェック→既存チェック→形式チェック。
// 空白のみの入力も空として扱う。既存チェックは大文字小文字を区別しない。
// 作成されたアカウントは仮登録状態となり、本人が外部IdPで初回サインイン
// するまで氏名・認証UIDはプレースホルダのままになる。
//
// ストレージ障害は致命エラーとして伝播させず、原因メッセージを含む
// APIErrorに変換して返す。
func (s *Service) CreateAdmin(ctx context.Context, email string) (*model.Account, *model.APIError) {
	email = strings.ToLower(strings.TrimSpace(email))

	// 1. 空チェック
	if email == "" {
		return nil, model.NewBlankEmailError()
	}

	// 2. 既存チェック（大文字小文字を区別しない）
	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, model.NewAdminCreateFailedError(err)
	}
	if existing != nil {
		return nil, model.NewAdminExistsError(email)
	}

	// 3. 形式チェック
	if !emailPattern.MatchString(email) {
		return nil, model.NewInvalidEmailError()
	}

	// 4. 作成
	authUID, err := generatePlaceholderAuthUID()
	if err != nil {
		return nil, model.NewAdminCreateFailedError(err)
	}

	now := time.Now()
	admin := &model.Account{
		ID:                uuid.New().String(),
		Email:             email,
		FullName:          fullNameFromEmail(email),
		Role:              model.RoleAdmin,
		AuthUID:           authUID,
		PendingActivation: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.accountRepo.Create(ctx, admin); err != nil {
		// 事前チェックをすり抜けた並行作成もここに含まれる
		return nil, model.NewAdminCreateFailedError(err)
	}

	slog.Info("admin account created",
		slog.String("account_id", admin.ID),
		slog.String("email", admin.Email),
	)

	return admin, nil
}

// RemoveAdmin は管理者権限の解任としてアカウントを削除する。
// 最後の管理者と自分自身は削除できない。
// ストレージ障害は致命エラーとしてそのまま伝播させる。
// エラーを飲み込むのはCreateAdminだけに限る。
func (s *Service) RemoveAdmin(ctx context.Context, actorID, targetID string) error {
	target, err := s.accountRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("削除対象アカウントの取得に失敗しました: %w", err)
	}
	if target == nil {
		return model.NewAccountNotFoundError(targetID)
	}

	adminCount, err := s.accountRepo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("管理者数の取得に失敗しました: %w", err)
	}

	if apiErr := model.ValidateAdminRemoval(target, actorID, adminCount); apiErr != nil {
		return apiErr
	}

	if err := s.accountRepo.DeleteByID(ctx, targetID); err != nil {
		return fmt.Errorf("アカウントの削除に失敗しました: %w", err)
	}

	slog.Info("admin account removed",
		slog.String("account_id", targetID),
		slog.String("removed_by", actorID),
	)

	return nil
}

// ListAdmins は管理者一覧をメールアドレス昇順で返す。
func (s *Service) ListAdmins(ctx context.Context) ([]*model.Account, error) {
	admins, err := s.accountRepo.ListAdminsByEmail(ctx)
	if err != nil {
		return nil, fmt.Errorf("管理者一覧の取得に失敗しました: %w", err)
	}
	return admins, nil
}

// Directory は組織名簿を返す。管理者を先に、メンバーを後に、それぞれ氏名昇順で並べる。
type Directory struct {
	Admins  []*model.Account
	Members []*model.Account
}

// GetDirectory は全アカウントをロール別にまとめた組織名簿を返す。
func (s *Service) GetDirectory(ctx context.Context) (*Directory, error) {
	admins, err := s.accountRepo.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("管理者一覧の取得に失敗しました: %w", err)
	}
	members, err := s.accountRepo.ListByRole(ctx, model.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}
	return &Directory{Admins: admins, Members: members}, nil
}

// GetAccount は指定IDのアカウントを取得する。
func (s *Service) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
	}
	return account, nil
}

// GetAvatar は指定アカウントの保存済みアバター画像を返す。
func (s *Service) GetAvatar(ctx context.Context, accountID string) ([]byte, string, error) {
	data, mimeType, err := s.accountRepo.FindAvatar(ctx, accountID)
	if err != nil {
		return nil, "", fmt.Errorf("アバターの取得に失敗しました: %w", err)
	}
	return data, mimeType, nil
}

// fullNameFromEmail はメールアドレスのローカル部から表示用の氏名を組み立てる。
// 区切り文字（. _ - +）を空白に置き換え、各語の先頭を大文字化する。
// "jane.smith@example.com" は "Jane Smith" になる。
func fullNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}

// generatePlaceholderAuthUID は仮登録アカウント用の認証UIDを生成する。
// 初回サインイン時に外部IdPの実UIDで上書きされる。
func generatePlaceholderAuthUID() (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
