package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// 外部キーの整合性チェックはストアの制約に委ねる。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `task_id, task_name, task_description, status, deadline, project_id, user_id`

// scanTask は1行分のタスクレコードを読み取る。
func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	task := &model.Task{}
	err := row.Scan(
		&task.TaskID, &task.TaskName, &task.TaskDescription,
		&task.Status, &task.Deadline, &task.ProjectID, &task.UserID,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create はタスクを作成し、ストア採番のIDを含む全レコードを返す。
// 存在しないプロジェクト・ユーザーを参照した場合は外部キー違反の制約エラーとなり、
// タスクレコードは一切永続化されない。
func (r *PostgresTaskRepo) Create(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx,
		`INSERT INTO tasks (task_name, task_description, status, deadline, project_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+taskColumns,
		draft.TaskName, draft.TaskDescription, draft.Status, draft.Deadline, draft.ProjectID, draft.UserID,
	))
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

// ListAll は全タスクを返す。並び順はストア定義に委ねる。
func (r *PostgresTaskRepo) ListAll(ctx context.Context) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}

// Update はパッチで指定されたフィールドのみを上書きする。
// 対象が存在しない場合はnilを返す。パッチが空の場合は現在のレコードをそのまま返す。
// 参照先の差し替え（project_id / user_id）が存在しないレコードを指す場合は制約エラーとなる。
func (r *PostgresTaskRepo) Update(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int64
	err = tx.QueryRowContext(ctx,
		`SELECT task_id FROM tasks WHERE task_id = $1 FOR UPDATE`, id,
	).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock task row: %w", err)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.TaskName.Set {
		add("task_name", patch.TaskName.Value)
	}
	if patch.TaskDescription.Set {
		add("task_description", patch.TaskDescription.Value)
	}
	if patch.Status.Set {
		add("status", patch.Status.Value)
	}
	if patch.Deadline.Set {
		add("deadline", patch.Deadline.Value)
	}
	if patch.ProjectID.Set {
		add("project_id", patch.ProjectID.Value)
	}
	if patch.UserID.Set {
		add("user_id", patch.UserID.Value)
	}

	var task *model.Task
	if len(sets) == 0 {
		task, err = scanTask(tx.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE task_id = $1`, id,
		))
	} else {
		args = append(args, id)
		query := fmt.Sprintf(
			`UPDATE tasks SET %s WHERE task_id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), taskColumns,
		)
		task, err = scanTask(tx.QueryRowContext(ctx, query, args...))
	}
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// Delete は指定IDのタスクを削除し、削除前のレコードを返す。
// 対象が存在しない場合はnilを返す。削除はトランザクション内で行われ、
// 失敗時は何も永続化されない。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id int64) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE task_id = $1 RETURNING `+taskColumns, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// CountByProjectID は指定プロジェクトを参照しているタスク数を返す。
func (r *PostgresTaskRepo) CountByProjectID(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks by project: %w", err)
	}
	return count, nil
}

// CountByUserID は指定ユーザーを担当とするタスク数を返す。
func (r *PostgresTaskRepo) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks by user: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
