// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/commcal/internal/model"
)

// ErrDuplicate はスキーマレベルの一意制約違反を表す。
// アプリケーション層の事前チェックをすり抜けた並行書き込みはこのエラーに写像され、
// 呼び出し元で適格性拒否として扱われる。
var ErrDuplicate = errors.New("unique constraint violation")

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByEmail はメールアドレスの大文字小文字を区別しない一致でアカウントを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// Create はアカウントを作成する。メール重複時はErrDuplicateを返す。
	Create(ctx context.Context, account *model.Account) error

	// Update はアカウントの属性を更新する。
	Update(ctx context.Context, account *model.Account) error

	// UpdateAvatar はアカウントのアバター画像データを更新する。
	UpdateAvatar(ctx context.Context, accountID string, data []byte, mimeType string) error

	// FindAvatar はアカウントのアバター画像データを取得する。
	// 未保存の場合はnilデータと空MIMEを返す。
	FindAvatar(ctx context.Context, accountID string) (data []byte, mimeType string, err error)

	// DeleteByID は指定IDのアカウントを削除する。
	// 関連するsignups、feedbacks、sessionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// CountByRole は指定ロールのアカウント数を返す。
	CountByRole(ctx context.Context, role model.Role) (int, error)

	// ListByRole は指定ロールのアカウント一覧を氏名昇順で返す。
	ListByRole(ctx context.Context, role model.Role) ([]*model.Account, error)

	// ListAdminsByEmail は管理者一覧をメールアドレス昇順で返す。
	ListAdminsByEmail(ctx context.Context) ([]*model.Account, error)

	// ListAll は全アカウントをメールアドレス昇順で返す。
	ListAll(ctx context.Context) ([]*model.Account, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByAccountID は指定アカウントの全セッションを削除する。
	DeleteByAccountID(ctx context.Context, accountID string) error
}

// EventRepository はイベントデータの永続化インターフェース。
type EventRepository interface {
	// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// Update はイベントを更新する。
	Update(ctx context.Context, event *model.Event) error

	// DeleteByID は指定IDのイベントを削除する。
	// 関連するsignups、feedbacksはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// ListBetween は開催時刻が[from, to)の範囲にあるイベントを開催時刻昇順で返す。
	// categoriesが空でない場合は該当カテゴリのみに絞り込む。
	ListBetween(ctx context.Context, from, to time.Time, categories []model.Category) ([]*model.Event, error)

	// ListAll は全イベントを開催時刻昇順で返す。カレンダー配信用。
	ListAll(ctx context.Context) ([]*model.Event, error)

	// ListSignedUpBefore は指定アカウントが参加登録済みで、
	// 開催時刻がtより前のイベントを開催時刻降順で最大limit件返す。
	ListSignedUpBefore(ctx context.Context, accountID string, t time.Time, limit int) ([]*model.Event, error)

	// ListSignedUpAfter は指定アカウントが参加登録済みで、
	// 開催時刻がt以降のイベントを開催時刻昇順で最大limit件返す。
	ListSignedUpAfter(ctx context.Context, accountID string, t time.Time, limit int) ([]*model.Event, error)
}

// SignupWithAccount は参加登録と登録者情報を結合した読み取り専用の投影。
// 名簿のCSV出力で使用する。
type SignupWithAccount struct {
	model.Signup
	FullName string
	Email    string
}

// SignupRepository は参加登録データの永続化インターフェース。
type SignupRepository interface {
	// Create は参加登録を作成する。(account, event) 重複時はErrDuplicateを返す。
	Create(ctx context.Context, signup *model.Signup) error

	// FindByAccountAndEvent はアカウントIDとイベントIDで参加登録を検索する。
	// 見つからない場合はnilを返す。
	FindByAccountAndEvent(ctx context.Context, accountID, eventID string) (*model.Signup, error)

	// DeleteByAccountAndEvent はアカウントIDとイベントIDで参加登録を削除する。
	// 削除した場合はtrue、該当行がなかった場合はfalseを返す。
	DeleteByAccountAndEvent(ctx context.Context, accountID, eventID string) (bool, error)

	// ListByEvent はイベントの参加登録一覧を登録者情報付きで保存順に返す。
	ListByEvent(ctx context.Context, eventID string) ([]SignupWithAccount, error)

	// CountByEvents は各イベントの参加登録数を返す。
	CountByEvents(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// FeedbackWithAuthor はフィードバックと投稿者情報を結合した読み取り専用の投影。
type FeedbackWithAuthor struct {
	model.Feedback
	AuthorName  string
	AuthorEmail string
}

// FeedbackRepository はフィードバックデータの永続化インターフェース。
type FeedbackRepository interface {
	// FindByAccountAndEvent はアカウントIDとイベントIDでフィードバックを検索する。
	// 見つからない場合はnilを返す。
	FindByAccountAndEvent(ctx context.Context, accountID, eventID string) (*model.Feedback, error)

	// Upsert は(account, event)をキーとしてフィードバックを冪等に書き込む。
	// 既存行がある場合はコメントと投稿時刻を上書きし、保存後の行を返す。
	// スキーマの一意制約に基づくINSERT ... ON CONFLICTで行い、
	// create/updateの分岐による重複行競合を避ける。
	Upsert(ctx context.Context, feedback *model.Feedback) (*model.Feedback, error)

	// ListByEvent はイベントのフィードバック一覧を投稿者情報付きで
	// 投稿時刻降順に返す。
	ListByEvent(ctx context.Context, eventID string) ([]FeedbackWithAuthor, error)
}
