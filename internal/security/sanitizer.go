// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザー入力の自由記述テキスト（ジョブやイベントの
// タイトル・説明文など）をサニタイズし、保存データへのHTML混入を防ぐ。
// bluemondayのStrictPolicyを使用し、すべてのタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキストフィールドのサニタイズ機能を提供する。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
// StrictPolicyはすべてのHTMLタグと属性を除去する。このAPIの自由記述
// フィールドはプレーンテキストとして扱うため、許可タグは存在しない。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからHTMLタグを除去し、前後の空白を削除して返す。
// 同一入力に対して常に同一出力を返す（冪等）。
func (s *TextSanitizer) Sanitize(text string) string {
	return strings.TrimSpace(s.policy.Sanitize(text))
}
