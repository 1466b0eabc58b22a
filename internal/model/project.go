package model

import "time"

// Project はタスクの所属先となるプロジェクトを表す。
// 1つのプロジェクトは0個以上のタスクから参照される。
type Project struct {
	ProjectID          int64
	ProjectName        string
	ProjectDescription string
	CreatedAt          time.Time
}

// ProjectDraft は作成リクエストから受け取るプロジェクトの入力フィールドを表す。
type ProjectDraft struct {
	ProjectName        string
	ProjectDescription string
}

// ProjectPatch はプロジェクトの部分更新ペイロードを表す。
type ProjectPatch struct {
	ProjectName        Optional[string] `json:"project_name"`
	ProjectDescription Optional[string] `json:"project_description"`
}

// IsEmpty は更新対象のフィールドが1つも指定されていない場合にtrueを返す。
func (p ProjectPatch) IsEmpty() bool {
	return !p.ProjectName.Set && !p.ProjectDescription.Set
}
