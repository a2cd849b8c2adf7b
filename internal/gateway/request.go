package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest は呼び出し元のリクエストが不正であることを表す。
var ErrInvalidRequest = errors.New("リクエストが不正です")

// validate は構造体タグ `validate` に基づく検証器。フィールド名はjsonタグの名前で報告する。
var validate = newValidator()

// newValidator はjsonタグ名でエラーを報告する検証器を生成する。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError は必須フィールドが不足していることを表す。
type ValidationError struct {
	// Fields は不足しているフィールド名（jsonの名前）。
	Fields []string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("必須フィールドが不足しています: %s", strings.Join(e.Fields, ", "))
}

// Unwrap はErrInvalidRequestを返す。
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// validateStruct はsを検証し、不足している全てのフィールドを1つのValidationErrorにまとめる。
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("リクエストの検証に失敗: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// JoinRequest は会議参加リクエスト。
type JoinRequest struct {
	// MeetingID は参加する会議のID。
	MeetingID string `json:"meetingId" validate:"required"`
	// Password は会議のパスワード。
	Password string `json:"password" validate:"required"`
}

// Validate は必須フィールドが全て空でないことを検証する。
func (r JoinRequest) Validate() error {
	return validateStruct(r)
}

// GuestTokenRequest はゲストトークン発行リクエスト。
// どちらのフィールドも省略でき、省略時は既定値を使う。
type GuestTokenRequest struct {
	// Subject はゲストの識別子。
	Subject *string `json:"subject"`
	// DisplayName はゲストの表示名。
	DisplayName *string `json:"displayName"`
}
