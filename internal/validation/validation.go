// Package validation はリクエスト入力のスキーマ検証を提供する。
//
// エンティティごとに作成用スキーマ（サーバー採番以外の全フィールド必須）と
// 更新用スキーマ（全フィールド任意、三値状態）の2系統を検証する。
// 違反はフィールド単位で収集し、1つのバリデーションエラーに集約して返す。
// 検証はストアに触れる前に完結し、部分的な状態を残さない。
package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

const (
	reasonRequired     = "必須項目です"
	reasonNotNullable  = "nullは指定できません"
	reasonInvalidEmail = "メールアドレスの形式が不正です"
	reasonInvalidRef   = "1以上の整数を指定してください"
)

// UserCreate はユーザー作成入力を検証する。違反がなければnilを返す。
func UserCreate(draft model.UserDraft) *model.APIError {
	var fields []model.FieldError
	fields = appendRequired(fields, "name", draft.Name)
	fields = appendEmail(fields, "email", draft.Email, true)
	fields = appendRequired(fields, "area", draft.Area)
	return aggregate(fields)
}

// UserUpdate はユーザー部分更新パッチを検証する。違反がなければnilを返す。
// 指定されたフィールドのみ検証し、未指定のフィールドには触れない。
func UserUpdate(patch model.UserPatch) *model.APIError {
	var fields []model.FieldError
	fields = appendOptionalText(fields, "name", patch.Name)
	if patch.Email.Set {
		if !patch.Email.Valid {
			fields = append(fields, model.FieldError{Field: "email", Reason: reasonNotNullable})
		} else {
			fields = appendEmail(fields, "email", patch.Email.Value, false)
		}
	}
	fields = appendOptionalText(fields, "area", patch.Area)
	return aggregate(fields)
}

// ProjectCreate はプロジェクト作成入力を検証する。違反がなければnilを返す。
func ProjectCreate(draft model.ProjectDraft) *model.APIError {
	var fields []model.FieldError
	fields = appendRequired(fields, "project_name", draft.ProjectName)
	fields = appendRequired(fields, "project_description", draft.ProjectDescription)
	return aggregate(fields)
}

// ProjectUpdate はプロジェクト部分更新パッチを検証する。違反がなければnilを返す。
func ProjectUpdate(patch model.ProjectPatch) *model.APIError {
	var fields []model.FieldError
	fields = appendOptionalText(fields, "project_name", patch.ProjectName)
	fields = appendOptionalText(fields, "project_description", patch.ProjectDescription)
	return aggregate(fields)
}

// TaskCreate はタスク作成入力を検証する。違反がなければnilを返す。
// statusは閉じた列挙値（To-do / Doing / Finished）に対して検証される。
// project_id / user_idの実在確認はストアの外部キー制約に委ねる。
func TaskCreate(draft model.TaskDraft) *model.APIError {
	var fields []model.FieldError
	fields = appendRequired(fields, "task_name", draft.TaskName)
	fields = appendRequired(fields, "task_description", draft.TaskDescription)
	fields = appendStatus(fields, string(draft.Status))
	if draft.Deadline.IsZero() {
		fields = append(fields, model.FieldError{Field: "deadline", Reason: reasonRequired})
	}
	if draft.ProjectID < 1 {
		fields = append(fields, model.FieldError{Field: "project_id", Reason: reasonInvalidRef})
	}
	if draft.UserID < 1 {
		fields = append(fields, model.FieldError{Field: "user_id", Reason: reasonInvalidRef})
	}
	return aggregate(fields)
}

// TaskUpdate はタスク部分更新パッチを検証する。違反がなければnilを返す。
// statusの列挙値チェックは更新時にも適用される。
func TaskUpdate(patch model.TaskPatch) *model.APIError {
	var fields []model.FieldError
	fields = appendOptionalText(fields, "task_name", patch.TaskName)
	fields = appendOptionalText(fields, "task_description", patch.TaskDescription)
	if patch.Status.Set {
		if !patch.Status.Valid {
			fields = append(fields, model.FieldError{Field: "status", Reason: reasonNotNullable})
		} else {
			fields = appendStatus(fields, patch.Status.Value)
		}
	}
	if patch.Deadline.Set && (!patch.Deadline.Valid || patch.Deadline.Value.IsZero()) {
		fields = append(fields, model.FieldError{Field: "deadline", Reason: reasonNotNullable})
	}
	if patch.ProjectID.Set && (!patch.ProjectID.Valid || patch.ProjectID.Value < 1) {
		fields = append(fields, model.FieldError{Field: "project_id", Reason: reasonInvalidRef})
	}
	if patch.UserID.Set && (!patch.UserID.Valid || patch.UserID.Value < 1) {
		fields = append(fields, model.FieldError{Field: "user_id", Reason: reasonInvalidRef})
	}
	return aggregate(fields)
}

// appendRequired は空白のみ・空文字のテキストフィールドを違反として追加する。
func appendRequired(fields []model.FieldError, name, value string) []model.FieldError {
	if strings.TrimSpace(value) == "" {
		return append(fields, model.FieldError{Field: name, Reason: reasonRequired})
	}
	return fields
}

// appendOptionalText は三値状態のテキストフィールドを検証する。
// 未指定は無視し、null指定と空文字を違反とする。
func appendOptionalText(fields []model.FieldError, name string, opt model.Optional[string]) []model.FieldError {
	if !opt.Set {
		return fields
	}
	if !opt.Valid {
		return append(fields, model.FieldError{Field: name, Reason: reasonNotNullable})
	}
	return appendRequired(fields, name, opt.Value)
}

// appendEmail はメールアドレスの構文を検証する。
func appendEmail(fields []model.FieldError, name, value string, required bool) []model.FieldError {
	if strings.TrimSpace(value) == "" {
		if required {
			return append(fields, model.FieldError{Field: name, Reason: reasonRequired})
		}
		return append(fields, model.FieldError{Field: name, Reason: reasonInvalidEmail})
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return append(fields, model.FieldError{Field: name, Reason: reasonInvalidEmail})
	}
	return fields
}

// appendStatus はステータスが定義済みの列挙値であることを検証する。
func appendStatus(fields []model.FieldError, value string) []model.FieldError {
	if !model.TaskStatus(value).IsValid() {
		reason := fmt.Sprintf("存在しないステータスです: %q（To-do / Doing / Finished のいずれかを指定してください）", value)
		return append(fields, model.FieldError{Field: "status", Reason: reason})
	}
	return fields
}

// aggregate は収集した違反を1つのバリデーションエラーにまとめる。違反がなければnilを返す。
func aggregate(fields []model.FieldError) *model.APIError {
	if len(fields) == 0 {
		return nil
	}
	return model.NewValidationError(fields)
}
