// Package guest は会議にゲスト参加するための一時的な識別情報を生成する。
//
// 生成した値は永続化しない。呼び出しごとに新しいUUIDを採番するため、
// プロセス内で同じ識別情報が2度生成されることは想定しない。
package guest

import (
	"github.com/google/uuid"
)

const (
	// emailPrefix はゲストメールアドレスのローカル部の接頭辞。
	emailPrefix = "guest"
	// emailDomain はゲストメールアドレスのドメイン。
	emailDomain = "appid.ciscospark.com"
	// displayNamePrefix はゲスト表示名の接頭辞。
	displayNamePrefix = "Guest "
	// subjectPrefix はゲストトークンのsubject既定値の接頭辞。
	subjectPrefix = "Guest-"
	// shortIDLength は表示名に使うUUIDの先頭文字数。
	shortIDLength = 8
)

// Identity は会議参加用に生成したゲストの識別情報。
type Identity struct {
	// Email は guest<uuid>@appid.ciscospark.com 形式のメールアドレス。
	Email string
	// DisplayName は "Guest " にUUID先頭8桁を連結した表示名。
	DisplayName string
}

// New は新しいゲスト識別情報を生成する。
// メールアドレスと表示名はそれぞれ別のUUIDから作られる。
func New() Identity {
	return Identity{
		Email:       NewEmail(),
		DisplayName: NewDisplayName(),
	}
}

// NewEmail は新しいゲスト用メールアドレスを生成する。
func NewEmail() string {
	return emailPrefix + uuid.NewString() + "@" + emailDomain
}

// NewDisplayName は新しいゲスト表示名を生成する。
func NewDisplayName() string {
	return displayNamePrefix + uuid.NewString()[:shortIDLength]
}

// DefaultSubject はsubjectが指定されなかった場合に使うゲストトークンのsubjectを生成する。
func DefaultSubject() string {
	return subjectPrefix + uuid.NewString()
}
