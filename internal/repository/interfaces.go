// Package repository はデータ永続化のインターフェースを定義する。
//
// 各リポジトリはキャッシュを持たず、すべての操作がストアへの往復となる。
// 変更系の操作は操作開始時にトランザクションを開き、成功時にコミット、
// 失敗時にロールバックしてから返る。部分的な書き込みが残ることはない。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はストア採番のIDとサーバー側の作成日時を持つユーザーを作成し、全レコードを返す。
	Create(ctx context.Context, draft model.UserDraft) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// ListAll は全ユーザーをストア定義の順序で返す。ページネーションは行わない。
	ListAll(ctx context.Context) ([]*model.User, error)

	// Update はパッチで指定されたフィールドのみを上書きし、更新後のレコードを返す。
	// 対象が存在しない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)

	// Delete は指定IDのユーザーを削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// Create はストア採番のIDとサーバー側の作成日時を持つプロジェクトを作成し、全レコードを返す。
	Create(ctx context.Context, draft model.ProjectDraft) (*model.Project, error)

	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Project, error)

	// ListAll は全プロジェクトをストア定義の順序で返す。
	ListAll(ctx context.Context) ([]*model.Project, error)

	// Update はパッチで指定されたフィールドのみを上書きし、更新後のレコードを返す。
	// 対象が存在しない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error)

	// Delete は指定IDのプロジェクトを削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// 外部キーの整合性はストアの制約に委ね、違反は制約エラーとして呼び出し側に返す。
type TaskRepository interface {
	// Create はストア採番のIDを持つタスクを作成し、全レコードを返す。
	Create(ctx context.Context, draft model.TaskDraft) (*model.Task, error)

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Task, error)

	// ListAll は全タスクをストア定義の順序で返す。
	ListAll(ctx context.Context) ([]*model.Task, error)

	// Update はパッチで指定されたフィールドのみを上書きし、更新後のレコードを返す。
	// 対象が存在しない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error)

	// Delete は指定IDのタスクを削除し、削除前のレコードを返す。
	// 対象が存在しない場合はnilを返す。
	Delete(ctx context.Context, id int64) (*model.Task, error)

	// CountByProjectID は指定プロジェクトを参照しているタスク数を返す。
	CountByProjectID(ctx context.Context, projectID int64) (int, error)

	// CountByUserID は指定ユーザーを担当とするタスク数を返す。
	CountByUserID(ctx context.Context, userID int64) (int, error)
}
