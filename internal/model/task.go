package model

import "time"

// Task は担当ユーザーとプロジェクトに紐づく作業タスクを表す。
// ProjectIDとUserIDは既存レコードを参照しなければならない（外部キー制約）。
type Task struct {
	TaskID          int64
	TaskName        string
	TaskDescription string
	Status          TaskStatus
	Deadline        time.Time
	ProjectID       int64
	UserID          int64
}

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// TaskStatusToDo は未着手の状態。
	TaskStatusToDo TaskStatus = "To-do"
	// TaskStatusDoing は作業中の状態。
	TaskStatusDoing TaskStatus = "Doing"
	// TaskStatusFinished は完了した状態。
	TaskStatusFinished TaskStatus = "Finished"
)

// IsValid はステータスが定義済みの3値のいずれかであるかを返す。
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusDoing, TaskStatusFinished:
		return true
	}
	return false
}

// TaskDraft は作成リクエストから受け取るタスクの入力フィールドを表す。
// 全フィールドが必須。
type TaskDraft struct {
	TaskName        string
	TaskDescription string
	Status          TaskStatus
	Deadline        time.Time
	ProjectID       int64
	UserID          int64
}

// TaskPatch はタスクの部分更新ペイロードを表す。
// ステータスの列挙値チェックは更新時にも適用される。
type TaskPatch struct {
	TaskName        Optional[string]    `json:"task_name"`
	TaskDescription Optional[string]    `json:"task_description"`
	Status          Optional[string]    `json:"status"`
	Deadline        Optional[time.Time] `json:"deadline"`
	ProjectID       Optional[int64]     `json:"project_id"`
	UserID          Optional[int64]     `json:"user_id"`
}

// IsEmpty は更新対象のフィールドが1つも指定されていない場合にtrueを返す。
func (p TaskPatch) IsEmpty() bool {
	return !p.TaskName.Set && !p.TaskDescription.Set && !p.Status.Set &&
		!p.Deadline.Set && !p.ProjectID.Set && !p.UserID.Set
}

// TaskDetail はタスクと関連エンティティを結合した読み取り専用モデル。
// タスク取得時にプロジェクトと担当ユーザーの全レコードを埋め込んで返す。
type TaskDetail struct {
	Task
	Project     Project
	Responsible User
}
