// Package model はドメインモデルを定義する。
package model

import "time"

// User はタスクの担当者となるユーザーを表す。
type User struct {
	UserID    int64
	Name      string
	Email     string
	Area      string
	CreatedAt time.Time
}

// UserDraft は作成リクエストから受け取るユーザーの入力フィールドを表す。
// UserIDとCreatedAtはストアが採番・設定する。
type UserDraft struct {
	Name  string
	Email string
	Area  string
}

// UserPatch はユーザーの部分更新ペイロードを表す。
// キーが存在しないフィールドは更新対象外となる（exclude unset）。
type UserPatch struct {
	Name  Optional[string] `json:"name"`
	Email Optional[string] `json:"email"`
	Area  Optional[string] `json:"area"`
}

// IsEmpty は更新対象のフィールドが1つも指定されていない場合にtrueを返す。
func (p UserPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Area.Set
}
