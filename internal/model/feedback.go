// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// maxFeedbackLength はコメント本文の最大文字数。
const maxFeedbackLength = 2000

// Feedback はイベント終了後に参加者が残すコメントを表す。
// (account, event) の組で一意。再送信時は既存行を上書きするUPSERT運用とし、
// イベント削除時にのみ連鎖削除される。
type Feedback struct {
	ID          string
	AccountID   string
	EventID     string
	Comments    string
	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate はフィードバックの不変条件を検証する。
// UPSERT経路では本来違反し得ないが、永続化前の最終防衛線として常に実行する。
func (f *Feedback) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(f.Comments) == "" {
		errs.Add("comments", "can't be blank")
	} else if utf8.RuneCountInString(f.Comments) > maxFeedbackLength {
		errs.Add("comments", "is too long (maximum is 2000 characters)")
	}
	if f.SubmittedAt.IsZero() {
		errs.Add("submitted_at", "can't be blank")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
