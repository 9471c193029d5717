// Package model はドメインモデルを定義する。
package model

import "time"

// Signup はあるアカウントのあるイベントへの参加登録を表す。
// (account, event) の組で一意。イベント削除時に連鎖削除される。
type Signup struct {
	ID        string
	AccountID string
	EventID   string
	CreatedAt time.Time
}
