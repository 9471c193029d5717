// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CommentSanitizerService はフィードバックのコメント本文をサニタイズし、
// XSS攻撃などのセキュリティリスクから利用者を保護する。
// コメントはプレーンテキストとして扱うため、bluemondayの
// StrictPolicyで全てのHTMLタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// CommentSanitizerService はコメント本文のサニタイズ機能のインターフェースを定義する。
// フィードバックの保存前に使用される。
type CommentSanitizerService interface {
	// Sanitize はコメント本文から全てのHTMLタグを除去したプレーンテキストを返す。
	// 前後の空白も除去する。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// commentSanitizer はCommentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はCommentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを持たないため、script等の危険なタグだけでなく
// 全てのマークアップが除去される。
func NewCommentSanitizer() *commentSanitizer {
	return &commentSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はコメント本文をプレーンテキストに正規化する。
// bluemondayはタグ除去後のテキストをHTMLエンティティとして
// エスケープするため、"R&D" のような通常文字列が表示で壊れないよう
// エスケープを戻してから前後の空白を落とす。
func (s *commentSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// compile-time interface check
var _ CommentSanitizerService = (*commentSanitizer)(nil)
