// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// フィールド単位の検証エラー（ValidationErrors）とは異なり、
// 業務ルールによる単一メッセージの拒否を表す。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, eligibility, not_found, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeEventNotFound        = "EVENT_NOT_FOUND"
	ErrCodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	ErrCodeDuplicateSignup      = "DUPLICATE_SIGNUP"
	ErrCodeEventAlreadyOccurred = "EVENT_ALREADY_OCCURRED"
	ErrCodeNotSignedUp          = "NOT_SIGNED_UP"
	ErrCodeFeedbackNotEligible  = "FEEDBACK_NOT_ELIGIBLE"
	ErrCodeBlankEmail           = "BLANK_EMAIL"
	ErrCodeAdminExists          = "ADMIN_EXISTS"
	ErrCodeInvalidEmail         = "INVALID_EMAIL_FORMAT"
	ErrCodeAdminCreateFailed    = "ADMIN_CREATE_FAILED"
	ErrCodeLastAdmin            = "LAST_ADMIN"
	ErrCodeSelfRemoval          = "SELF_REMOVAL"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "You must sign in to perform this action.",
		Category: "auth",
		Action:   "Sign in and try again.",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "You do not have permission to perform this action.",
		Category: "auth",
		Action:   "Contact an admin if you believe this is a mistake.",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("Event not found: %s", eventID),
		Category: "not_found",
		Action:   "Check the event and try again.",
	}
}

// NewAccountNotFoundError はアカウント未検出エラーを生成する。
func NewAccountNotFoundError(accountID string) *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  fmt.Sprintf("Account not found: %s", accountID),
		Category: "not_found",
		Action:   "Check the account and try again.",
	}
}

// NewDuplicateSignupError は重複参加登録の拒否を生成する。
func NewDuplicateSignupError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSignup,
		Message:  "You have already signed up for this event.",
		Category: "eligibility",
		Action:   "Check your dashboard for your existing signup.",
	}
}

// NewEventAlreadyOccurredError は過去イベントへの参加登録の拒否を生成する。
func NewEventAlreadyOccurredError() *APIError {
	return &APIError{
		Code:     ErrCodeEventAlreadyOccurred,
		Message:  "You cannot sign up for events that have already occurred.",
		Category: "eligibility",
		Action:   "Browse the calendar for upcoming events.",
	}
}

// NewNotSignedUpError は未登録の参加取消の拒否を生成する。
func NewNotSignedUpError() *APIError {
	return &APIError{
		Code:     ErrCodeNotSignedUp,
		Message:  "You are not signed up for this event.",
		Category: "eligibility",
		Action:   "Nothing to cancel.",
	}
}

// NewFeedbackNotEligibleError はフィードバック不適格の拒否を生成する。
// 3条件（認証済み・イベント終了・参加登録あり）のどれが欠けても
// 同一メッセージを返し、失敗理由は呼び出し元に開示しない。
func NewFeedbackNotEligibleError() *APIError {
	return &APIError{
		Code:     ErrCodeFeedbackNotEligible,
		Message:  "You can only leave feedback for events you attended after they have occurred.",
		Category: "eligibility",
		Action:   "Wait until the event has concluded, or sign up next time.",
	}
}

// NewBlankEmailError は空メールアドレスの拒否を生成する。
func NewBlankEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeBlankEmail,
		Message:  "Email cannot be blank.",
		Category: "eligibility",
		Action:   "Enter an email address.",
	}
}

// NewAdminExistsError は既存メールアドレスでの管理者作成の拒否を生成する。
func NewAdminExistsError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeAdminExists,
		Message:  fmt.Sprintf("Admin with email %s already exists.", email),
		Category: "eligibility",
		Action:   "Use a different email address.",
	}
}

// NewInvalidEmailError は形式不正メールアドレスの拒否を生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "Invalid email format.",
		Category: "eligibility",
		Action:   "Enter an email address like name@example.com.",
	}
}

// NewAdminCreateFailedError は管理者作成時のストレージ障害を包んだ通知を生成する。
// この操作に限り、下位の障害を致命エラーとして伝播させず利用者向けメッセージに変換する。
func NewAdminCreateFailedError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeAdminCreateFailed,
		Message:  fmt.Sprintf("Error creating admin: %s", cause),
		Category: "system",
		Action:   "Try again, or check the server logs.",
	}
}

// NewLastAdminError は最後の管理者の削除の拒否を生成する。
func NewLastAdminError() *APIError {
	return &APIError{
		Code:     ErrCodeLastAdmin,
		Message:  "Cannot remove the last admin.",
		Category: "eligibility",
		Action:   "Promote another admin first.",
	}
}

// NewSelfRemovalError は自分自身の管理者削除の拒否を生成する。
func NewSelfRemovalError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfRemoval,
		Message:  "You cannot remove yourself as an admin.",
		Category: "eligibility",
		Action:   "Ask another admin to remove your account.",
	}
}
