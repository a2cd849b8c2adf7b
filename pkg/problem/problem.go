// Package problem はRFC 7807形式のエラーレスポンス（application/problem+json）を提供する。
//
// 上流プラットフォームのエラーは detail にレスポンスボディをそのまま格納し、
// ゲートウェイ側で再解釈しない。
package problem

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentType はProblemレスポンスのContent-Type。
const ContentType = "application/problem+json"

// DefaultType はtypeに既定で設定するURI。
const DefaultType = "about:blank"

// DefaultTitle はサーバー側エラーのtitle。
const DefaultTitle = "An error occurred while processing your request."

// ContextKeyRequestID はProblemのtraceIdに使うリクエストIDをGinコンテキストから取得するキー。
const ContextKeyRequestID = "request_id"

// Problem はRFC 7807のProblem Details。
type Problem struct {
	// Type は問題の種類を表すURI。
	Type string `json:"type"`
	// Title は問題の要約。
	Title string `json:"title"`
	// Status はHTTPステータスコード。
	Status int `json:"status"`
	// Detail は問題の詳細。上流エラーの場合は上流のレスポンスボディそのもの。
	// 上流のボディが空でも空文字列として出力する。
	Detail string `json:"detail"`
	// UpstreamStatus は上流プラットフォームが返したステータスコード。
	UpstreamStatus int `json:"upstreamStatus,omitempty"`
	// MissingFields は不足している必須フィールド名。
	MissingFields []string `json:"missingFields,omitempty"`
	// TraceID はリクエストID。
	TraceID string `json:"traceId,omitempty"`
}

// New はステータスコードと詳細からProblemを生成する。
func New(status int, detail string) *Problem {
	title := http.StatusText(status)
	if status >= http.StatusInternalServerError {
		title = DefaultTitle
	}
	return &Problem{
		Type:   DefaultType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// FromUpstream は上流プラットフォームのエラーレスポンスからProblemを生成する。
// detailにはbodyを一切加工せずに格納する。ステータスは常に500。
// JSONへの書き出し時、UTF-8として不正なバイトはU+FFFDに置き換わる。
func FromUpstream(upstreamStatus int, body []byte) *Problem {
	p := New(http.StatusInternalServerError, string(body))
	p.UpstreamStatus = upstreamStatus
	return p
}

// Validation は入力検証エラーのProblemを生成する。
func Validation(detail string, missingFields []string) *Problem {
	p := New(http.StatusBadRequest, detail)
	p.MissingFields = missingFields
	return p
}

// Write はProblemをレスポンスとして書き込み、以降のハンドラを中断する。
func Write(c *gin.Context, p *Problem) {
	if p.TraceID == "" {
		p.TraceID = c.GetString(ContextKeyRequestID)
	}
	// render.JSONは既存のContent-Typeを上書きしない
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(p.Status, p)
}
