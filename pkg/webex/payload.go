package webex

import "time"

// 上流APIのパス。ベースURLからの相対パスで指定する。
const (
	// PathMeetings は会議作成API。
	PathMeetings = "/meetings"
	// PathMeetingsJoin は会議参加API。
	PathMeetingsJoin = "/meetings/join"
	// PathGuestsToken はゲストトークン発行API。
	PathGuestsToken = "/guests/token"
)

// TimeLayout は会議の開始・終了日時の書式。末尾のZは常にリテラルで出力する。
const TimeLayout = "2006-01-02T15:04:05Z"

// UnlockedMeetingJoinSecurityAllowJoin はロックされていない会議への参加を許可する設定値。
const UnlockedMeetingJoinSecurityAllowJoin = "allowJoin"

// FormatTime はtをUTCに変換してTimeLayout形式の文字列にする。
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// CreateMeetingRequest は会議作成APIのリクエストボディ。
type CreateMeetingRequest struct {
	// Title は会議のタイトル。
	Title string `json:"title"`
	// Start は開始日時（UTC）。
	Start string `json:"start"`
	// End は終了日時（UTC）。
	End string `json:"end"`
	// EnabledJoinBeforeHost はホストより前の参加を許可するかどうか。
	EnabledJoinBeforeHost bool `json:"enabledJoinBeforeHost"`
	// JoinBeforeHostMinutes は開始前に参加できる時間（分）。
	JoinBeforeHostMinutes int `json:"joinBeforeHostMinutes"`
	// UnlockedMeetingJoinSecurity はロックされていない会議の参加ポリシー。
	UnlockedMeetingJoinSecurity string `json:"unlockedMeetingJoinSecurity"`
}

// JoinMeetingRequest は会議参加APIのリクエストボディ。
type JoinMeetingRequest struct {
	// MeetingID は参加する会議のID。
	MeetingID string `json:"meetingId"`
	// Password は会議のパスワード。
	Password string `json:"password"`
	// JoinDirectly はtrueの場合、参加用リンクではなく直接参加する。
	JoinDirectly bool `json:"joinDirectly"`
	// Email はゲストのメールアドレス。
	Email string `json:"email"`
	// DisplayName はゲストの表示名。
	DisplayName string `json:"displayName"`
}

// GuestTokenRequest はゲストトークン発行APIのリクエストボディ。
type GuestTokenRequest struct {
	// Subject はゲストを一意に識別する値。
	Subject string `json:"subject"`
	// DisplayName はゲストの表示名。
	DisplayName string `json:"displayName"`
}
