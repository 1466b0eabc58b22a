package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgreSQLのSQLSTATEコード
const (
	pgCodeNotNullViolation    = "23502"
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
)

// translateError はドライバエラーをドメインエラーに変換する。
// 制約違反（NOT NULL、外部キー、一意性）はmodel.APIErrorの制約違反エラーとなり、
// それ以外のエラーはそのまま返す（呼び出し側でストアエラーとして扱う）。
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgCodeNotNullViolation:
		return model.NewConstraintViolationError("必須フィールドが未入力です")
	case pgCodeForeignKeyViolation:
		return model.NewConstraintViolationError(foreignKeyMessage(pqErr.Constraint))
	case pgCodeUniqueViolation:
		return model.NewConstraintViolationError("一意制約に違反しています")
	}

	return err
}

// foreignKeyMessage は違反した外部キー制約名から参照先を特定したメッセージを返す。
func foreignKeyMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "project_id"):
		return "参照先のプロジェクトが存在しません"
	case strings.Contains(constraint, "user_id"):
		return "参照先のユーザーが存在しません"
	}
	return "参照先のレコードが存在しません"
}
