package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/taskman/internal/model"
)

// NOT NULL違反が制約エラーに変換されることを検証
func TestTranslateError_NotNullViolation(t *testing.T) {
	err := translateError(&pq.Error{Code: pq.ErrorCode(pgCodeNotNullViolation)})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *model.APIError")
	}
	if apiErr.Code != model.ErrCodeConstraintViolation {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeConstraintViolation)
	}
	if !strings.Contains(apiErr.Message, "必須フィールド") {
		t.Errorf("message should name the missing-field condition: %q", apiErr.Message)
	}
}

// 外部キー違反が参照先を特定した制約エラーに変換されることを検証
func TestTranslateError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"tasks_project_id_fkey", "プロジェクト"},
		{"tasks_user_id_fkey", "ユーザー"},
		{"some_other_fkey", "レコード"},
	}

	for _, tt := range tests {
		err := translateError(&pq.Error{
			Code:       pq.ErrorCode(pgCodeForeignKeyViolation),
			Constraint: tt.constraint,
		})

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("constraint %q: expected *model.APIError", tt.constraint)
		}
		if !strings.Contains(apiErr.Message, tt.want) {
			t.Errorf("constraint %q: message = %q, should contain %q", tt.constraint, apiErr.Message, tt.want)
		}
	}
}

// 一意制約違反が制約エラーに変換されることを検証
func TestTranslateError_UniqueViolation(t *testing.T) {
	err := translateError(&pq.Error{Code: pq.ErrorCode(pgCodeUniqueViolation)})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *model.APIError")
	}
	if apiErr.Code != model.ErrCodeConstraintViolation {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeConstraintViolation)
	}
}

// 制約違反以外のドライバエラーはそのまま返ることを検証
func TestTranslateError_PassesThroughOtherErrors(t *testing.T) {
	// 接続断（SQLSTATE 08006）は制約違反ではない
	pqErr := &pq.Error{Code: pq.ErrorCode("08006")}
	if got := translateError(pqErr); got != error(pqErr) {
		t.Errorf("non-constraint pq error should pass through, got %v", got)
	}

	plain := errors.New("connection refused")
	if got := translateError(plain); got != plain {
		t.Errorf("plain error should pass through, got %v", got)
	}
}
