// Package model はドメインモデルを定義する。
package model

import "time"

// Role はアカウントの権限区分を表す。member と admin の2値のみ。
type Role string

const (
	// RoleMember は一般メンバーを表す。
	RoleMember Role = "member"
	// RoleAdmin は管理者を表す。
	RoleAdmin Role = "admin"
)

// Valid はロールが定義済みの2値のいずれかであるかを返す。
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Account はサービス利用者（メンバーまたは管理者）を表す。
// 外部IdPでの初回サインイン時に自動作成されるか、管理者によって明示的に作成される。
type Account struct {
	ID        string
	Email     string
	FullName  string
	Role      Role
	AuthUID   string // 外部IdPのユーザー識別子
	AvatarURL string

	// PendingActivation は管理者が先行作成したアカウントで、
	// 外部IdPでの初回サインインが未完了であることを示す。
	PendingActivation bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin は管理者権限を持つかを返す。
// 権限分岐はすべてこの述語を経由する。
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsMember は一般メンバーであるかを返す。
func (a *Account) IsMember() bool {
	return a.Role == RoleMember
}
