// Package model はドメインモデルを定義する。
package model

import "time"

// このファイルは参加登録・フィードバック・管理者削除の適格性判定を
// 純粋関数として集約する。現在の永続状態を入力として受け取り、
// 許可ならnil、拒否なら理由を表すAPIErrorを返す。

// ValidateSignup は参加登録の適格性を判定する。
// 重複登録と過去イベントへの登録を拒否する。
// イベントの過去判定は日付単位ではなく時刻そのものの厳密比較で行う。
// Signupを永続化するすべての経路（セルフサービス・管理者代行）がこの判定を通る。
func ValidateSignup(event *Event, alreadySignedUp bool, now time.Time) *APIError {
	if alreadySignedUp {
		return NewDuplicateSignupError()
	}
	if event.IsPast(now) || event.EventDate.Equal(now) {
		return NewEventAlreadyOccurredError()
	}
	return nil
}

// FeedbackEligible はフィードバック投稿の3条件を判定する。
//  1. 認証済みであること
//  2. イベントの開催時刻が現在より厳密に過去であること
//  3. 当該アカウントの参加登録が存在すること
//
// 呼び出し元はfalseの場合、失敗した条件を区別せず一様な拒否を返すこと。
func FeedbackEligible(authenticated bool, event *Event, hasSignup bool, now time.Time) bool {
	if !authenticated {
		return false
	}
	if !event.IsPast(now) {
		return false
	}
	return hasSignup
}

// ValidateAdminRemoval は管理者アカウント削除の適格性を判定する。
// adminCountは現在role=adminであるアカウントの総数。
// 最後の管理者の削除と、実行者自身の削除を拒否する。
func ValidateAdminRemoval(target *Account, actorID string, adminCount int) *APIError {
	if target.IsAdmin() && adminCount <= 1 {
		return NewLastAdminError()
	}
	if target.ID == actorID {
		return NewSelfRemovalError()
	}
	return nil
}
