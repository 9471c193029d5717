package handler

import (
	"time"
)

// eventRequest はイベント作成・更新リクエストのボディ。
// 日時はRFC 3339形式で受け取る。
type eventRequest struct {
	Title       string    `json:"title" validate:"required"`
	EventDate   time.Time `json:"event_date" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Location    string    `json:"location"`
	Category    string    `json:"category" validate:"required,oneof=Service 'Bush School' Social"`
}

// feedbackRequest はフィードバック送信リクエストのボディ。
type feedbackRequest struct {
	Comments string `json:"comments" validate:"required,max=2000"`
}

// createAdminRequest は管理者作成リクエストのボディ。
// メール形式の詳細検証はサービス層が行うため、ここでは形だけを見る。
type createAdminRequest struct {
	Email string `json:"email"`
}

// eventResponse はイベント情報のAPIレスポンス。
type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	EventDate   time.Time `json:"event_date"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
}

// accountResponse はアカウント情報のAPIレスポンス。
type accountResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FullName          string `json:"full_name"`
	Role              string `json:"role"`
	PendingActivation bool   `json:"pending_activation"`
}

// signupResponse は参加登録のAPIレスポンス。
type signupResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// feedbackResponse はフィードバックのAPIレスポンス。
type feedbackResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Comments    string    `json:"comments"`
	SubmittedAt time.Time `json:"submitted_at"`
}
