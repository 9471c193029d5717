// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// FieldError はエンティティの単一フィールドに対する検証エラーを表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors はフィールド→メッセージ形式の検証エラーの集合。
// 業務ルールによる拒否（APIError、カテゴリ eligibility）とは区別される。
type ValidationErrors []FieldError

// Error はerrorインターフェースを実装する。
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, ", ")
}

// Add はフィールドエラーを追加する。
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}
