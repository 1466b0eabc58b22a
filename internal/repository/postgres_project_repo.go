package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

const projectColumns = `project_id, project_name, project_description, created_at`

// Create はプロジェクトを作成し、ストア採番のIDと作成日時を含む全レコードを返す。
func (r *PostgresProjectRepo) Create(ctx context.Context, draft model.ProjectDraft) (*model.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	project := &model.Project{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO projects (project_name, project_description)
		 VALUES ($1, $2)
		 RETURNING `+projectColumns,
		draft.ProjectName, draft.ProjectDescription,
	).Scan(&project.ProjectID, &project.ProjectName, &project.ProjectDescription, &project.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return project, nil
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	project := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE project_id = $1`,
		id,
	).Scan(&project.ProjectID, &project.ProjectName, &project.ProjectDescription, &project.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}

	return project, nil
}

// ListAll は全プロジェクトを返す。並び順はストア定義に委ねる。
func (r *PostgresProjectRepo) ListAll(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project := &model.Project{}
		if err := rows.Scan(&project.ProjectID, &project.ProjectName, &project.ProjectDescription, &project.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}

	return projects, nil
}

// Update はパッチで指定されたフィールドのみを上書きする。
// 対象が存在しない場合はnilを返す。パッチが空の場合は現在のレコードをそのまま返す。
func (r *PostgresProjectRepo) Update(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int64
	err = tx.QueryRowContext(ctx,
		`SELECT project_id FROM projects WHERE project_id = $1 FOR UPDATE`, id,
	).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock project row: %w", err)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.ProjectName.Set {
		add("project_name", patch.ProjectName.Value)
	}
	if patch.ProjectDescription.Set {
		add("project_description", patch.ProjectDescription.Value)
	}

	project := &model.Project{}
	if len(sets) == 0 {
		err = tx.QueryRowContext(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE project_id = $1`, id,
		).Scan(&project.ProjectID, &project.ProjectName, &project.ProjectDescription, &project.CreatedAt)
	} else {
		args = append(args, id)
		query := fmt.Sprintf(
			`UPDATE projects SET %s WHERE project_id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), projectColumns,
		)
		err = tx.QueryRowContext(ctx, query, args...).Scan(
			&project.ProjectID, &project.ProjectName, &project.ProjectDescription, &project.CreatedAt,
		)
	}
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return project, nil
}

// Delete は指定IDのプロジェクトを削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresProjectRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE project_id = $1`, id)
	if err != nil {
		return false, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
