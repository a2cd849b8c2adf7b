package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/webex-gateway/pkg/guest"
	"github.com/nao1215/webex-gateway/pkg/webex"
)

const (
	// meetingTitlePrefix は作成する会議タイトルの接頭辞。
	meetingTitlePrefix = "G2G Meeting "
	// meetingStartDelay は呼び出し時刻から会議開始までの時間。
	meetingStartDelay = 5 * time.Minute
	// meetingDuration は会議の長さ。
	meetingDuration = 30 * time.Minute
	// joinBeforeHostMinutes はホストより前に参加できる時間（分）。
	joinBeforeHostMinutes = 15
	// defaultGuestDisplayName はゲストトークンの表示名の既定値。
	defaultGuestDisplayName = "Anonymous Guest"
)

// upstream は上流プラットフォームへ認証付きリクエストを送るもの。
type upstream interface {
	Send(ctx context.Context, path string, payload any) (*webex.Result, error)
}

// Core は会議作成・会議参加・ゲストトークン発行の3操作を実装する。
//
// 上流がエラーステータスを返した場合もerrorにはせず、Resultをそのまま返す。
// errorを返すのは入力検証エラー（*ValidationError）と通信エラーの場合のみ。
type Core struct {
	// upstream は上流プラットフォームのクライアント。
	upstream upstream
	// now は現在時刻を返す。
	now func() time.Time
}

// CoreOption はCoreの設定を変更する。
type CoreOption func(*Core)

// WithClock は現在時刻の取得方法を差し替える。
func WithClock(now func() time.Time) CoreOption {
	return func(c *Core) {
		c.now = now
	}
}

// NewCore は新しいCoreを生成する。
func NewCore(up upstream, opts ...CoreOption) *Core {
	c := &Core{
		upstream: up,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMeeting は5分後に始まる30分間の会議を作成する。
func (c *Core) CreateMeeting(ctx context.Context) (*webex.Result, error) {
	return c.upstream.Send(ctx, webex.PathMeetings, c.newCreateMeetingRequest())
}

// newCreateMeetingRequest は会議作成ペイロードを組み立てる。
func (c *Core) newCreateMeetingRequest() webex.CreateMeetingRequest {
	start := c.now().UTC().Add(meetingStartDelay)
	end := start.Add(meetingDuration)
	return webex.CreateMeetingRequest{
		Title:                       meetingTitlePrefix + uuid.NewString(),
		Start:                       webex.FormatTime(start),
		End:                         webex.FormatTime(end),
		EnabledJoinBeforeHost:       true,
		JoinBeforeHostMinutes:       joinBeforeHostMinutes,
		UnlockedMeetingJoinSecurity: webex.UnlockedMeetingJoinSecurityAllowJoin,
	}
}

// JoinMeeting は生成したゲスト識別情報で会議に参加する。
// meetingIdかpasswordが欠けている場合は上流を呼ばずに*ValidationErrorを返す。
func (c *Core) JoinMeeting(ctx context.Context, req JoinRequest) (*webex.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity := guest.New()
	return c.upstream.Send(ctx, webex.PathMeetingsJoin, webex.JoinMeetingRequest{
		MeetingID:    req.MeetingID,
		Password:     req.Password,
		JoinDirectly: false,
		Email:        identity.Email,
		DisplayName:  identity.DisplayName,
	})
}

// IssueGuestToken はゲストトークンを発行する。
// subjectとdisplayNameは省略時のみ既定値で補い、指定された値は空文字列でもそのまま送る。
func (c *Core) IssueGuestToken(ctx context.Context, req GuestTokenRequest) (*webex.Result, error) {
	payload := webex.GuestTokenRequest{
		DisplayName: defaultGuestDisplayName,
	}
	if req.Subject != nil {
		payload.Subject = *req.Subject
	} else {
		payload.Subject = guest.DefaultSubject()
	}
	if req.DisplayName != nil {
		payload.DisplayName = *req.DisplayName
	}
	return c.upstream.Send(ctx, webex.PathGuestsToken, payload)
}
