package webex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL はWebex REST APIのベースURL。
const DefaultBaseURL = "https://webexapis.com/v1"

// ErrTransport は上流プラットフォームとの通信そのものが失敗したことを表す。
// 上流がエラーステータスを返した場合はこのエラーにならない。
var ErrTransport = errors.New("上流プラットフォームとの通信に失敗")

// Observer は上流呼び出し1回ごとの結果を受け取る関数。
// 通信エラー時はstatusCodeが0になる。
type Observer func(path string, statusCode int, elapsed time.Duration, err error)

// Client はWebex REST API用のHTTPクライアント。
// 生成後は読み取り専用なので、複数のgoroutineから共有してよい。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先APIのベースURL。
	baseURL string
	// accessToken はAuthorizationヘッダーに載せるBearerトークン。
	accessToken string
	// observer は呼び出し結果の通知先。nilの場合は通知しない。
	observer Observer
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver は上流呼び出しの結果を通知する関数を設定する。
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New は新しいWebex APIクライアントを生成する。
// baseURLが空の場合はDefaultBaseURLを使う。タイムアウトはトランスポートの既定値に従う。
func New(baseURL, accessToken string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result は上流プラットフォームからのレスポンス。
// Bodyは受信したバイト列そのままで、解釈や整形はしない。
type Result struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
	// ContentType はレスポンスのContent-Typeヘッダー。
	ContentType string
}

// OK はステータスコードが2xxかどうかを返す。
func (r *Result) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Send は指定パスにJSONボディでPOSTリクエストを送信する。
// ステータスコードに関わらずレスポンスボディを全て読み込んで返す。
// errorを返すのはリクエストの組み立てと通信に失敗した場合のみ。
func (c *Client) Send(ctx context.Context, path string, payload any) (*Result, error) {
	start := time.Now()
	res, err := c.send(ctx, path, payload)
	if c.observer != nil {
		status := 0
		if res != nil {
			status = res.StatusCode
		}
		c.observer(path, status, time.Since(start), err)
	}
	return res, err
}

// send はSendの本体。
func (c *Client) send(ctx context.Context, path string, payload any) (*Result, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: path=%s: %w", ErrTransport, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: レスポンスの読み取りに失敗: %w", ErrTransport, err)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
