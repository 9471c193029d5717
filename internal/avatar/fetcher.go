// Package avatar は外部IdP由来のプロフィール画像の取得を提供する。
package avatar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SSRFValidator はSSRF防止機能のインターフェース。
// security.SSRFGuardServiceを満たす実装を注入する。
type SSRFValidator interface {
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
	ValidateURL(rawURL string) error
}

// FetcherConfig はアバター取得の設定。
type FetcherConfig struct {
	Timeout time.Duration // HTTP取得のタイムアウト
	MaxSize int64         // 画像の最大バイト数
}

// Fetcher はプロフィール画像の取得機能の実装。
// 取得先は外部IdPが返す画像URLで、利用者が間接的に制御できるため
// SSRF検証付きのクライアントで取得する。
type Fetcher struct {
	ssrfGuard SSRFValidator
	config    FetcherConfig
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(ssrfGuard SSRFValidator, config FetcherConfig) *Fetcher {
	return &Fetcher{
		ssrfGuard: ssrfGuard,
		config:    config,
	}
}

// Fetch は画像URLから画像データとMIMEタイプを取得する。
// 取得できない場合はエラーを返し、保存の判断は呼び出し元に委ねる。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if rawURL == "" {
		return nil, "", fmt.Errorf("empty avatar URL")
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(rawURL); err != nil {
			return nil, "", fmt.Errorf("avatar URL blocked: %w", err)
		}
	}

	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create avatar request: %w", err)
	}
	req.Header.Set("User-Agent", "Commcal/1.0 Community Calendar")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("avatar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("avatar fetch returned status %d", resp.StatusCode)
	}

	// レスポンスボディを読み込み（上限+1バイトで超過を検出）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read avatar response: %w", err)
	}

	if int64(len(body)) > f.config.MaxSize {
		return nil, "", fmt.Errorf("avatar exceeds size limit of %d bytes", f.config.MaxSize)
	}

	if len(body) == 0 {
		return nil, "", fmt.Errorf("empty avatar response")
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(mimeType) {
		return nil, "", fmt.Errorf("avatar content type is not an image: %q", mimeType)
	}

	return body, mimeType, nil
}

// getHTTPClient はHTTPクライアントを取得する。
func (f *Fetcher) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(f.config.Timeout, f.config.MaxSize)
	}
	return &http.Client{Timeout: f.config.Timeout}
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
