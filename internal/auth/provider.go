// Package auth は外部IdPとのセッション交換とセッション管理を提供する。
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sessionIDHeader = "X-Session-ID"

// SessionData は外部IdPから取得した検証済みユーザー情報を表す。
type SessionData struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// SessionProvider は外部IdPのインターフェース。
// ワンタイムセッションIDを検証済みユーザー情報に交換する。
type SessionProvider interface {
	// FetchSessionData はワンタイムセッションIDをIdPに問い合わせ、
	// 検証済みのユーザー情報とセッショントークンを取得する。
	FetchSessionData(ctx context.Context, sessionID string) (*SessionData, error)
}

// ProviderConfig は外部IdPクライアントの設定。
type ProviderConfig struct {
	// SessionDataURL はIdPのセッションデータエンドポイントURL。
	SessionDataURL string
	// Timeout はIdP呼び出しのタイムアウト。IdPが応答しない場合でも
	// リクエストを無期限に待たせないための上限。
	Timeout time.Duration
}

// ProviderClient は外部IdPのHTTPクライアント実装。
type ProviderClient struct {
	config ProviderConfig
	client *http.Client
}

// NewProviderClient はProviderClientを生成する。
func NewProviderClient(config ProviderConfig) *ProviderClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &ProviderClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// FetchSessionData はワンタイムセッションIDをIdPに問い合わせる。
// 非2xxレスポンスや接続エラーはそのままerrorとして返す。呼び出し元
// （Service）がInvalidSessionに丸めるため、ここでは詳細を保持する。
func (c *ProviderClient) FetchSessionData(ctx context.Context, sessionID string) (*SessionData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.SessionDataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session data request: %w", err)
	}
	req.Header.Set(sessionIDHeader, sessionID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session data request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read session data response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session data fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var data SessionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session data response: %w", err)
	}

	if data.Email == "" || data.SessionToken == "" {
		return nil, fmt.Errorf("incomplete session data in response")
	}

	return &data, nil
}

// compile-time interface check
var _ SessionProvider = (*ProviderClient)(nil)
