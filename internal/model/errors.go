package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, task, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"
	ErrCodeStoreError          = "STORE_ERROR"
)

// FieldError はバリデーションに失敗した個々のフィールドと理由を表す。
type FieldError struct {
	Field  string
	Reason string
}

// NewValidationError は複数フィールドの違反を1つに集約したバリデーションエラーを生成する。
// ストアへ到達する前に検出され、部分的な状態を残さない。
func NewValidationError(fields []FieldError) *APIError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s（%s）", f.Field, f.Reason)
	}
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s", strings.Join(parts, ", ")),
		Category: "validation",
		Action:   "指摘されたフィールドを修正して再度お試しください。",
	}
}

// NewUserNotFoundError は指定IDのユーザーが存在しない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", userID),
		Category: "task",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewProjectNotFoundError は指定IDのプロジェクトが存在しない場合のエラーを生成する。
func NewProjectNotFoundError(projectID int64) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %d", projectID),
		Category: "task",
		Action:   "プロジェクトIDを確認してください。",
	}
}

// NewTaskNotFoundError は指定IDのタスクが存在しない場合のエラーを生成する。
func NewTaskNotFoundError(taskID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %d", taskID),
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewConstraintViolationError はストア側の制約違反（NOT NULL、外部キー、一意性）を表すエラーを生成する。
// conditionには違反した条件の説明を指定する。
func NewConstraintViolationError(condition string) *APIError {
	return &APIError{
		Code:     ErrCodeConstraintViolation,
		Message:  fmt.Sprintf("データベース制約に違反しました: %s", condition),
		Category: "validation",
		Action:   "参照先のレコードと入力値を確認してください。",
	}
}

// NewStoreError は永続化層の内部エラーを表すエラーを生成する。
// 低レベルの診断テキストは外部に漏らさず、詳細はログのみに記録する。
func NewStoreError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreError,
		Message:  "データベース処理中に内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
