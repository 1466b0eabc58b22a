package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `user_id, name, email, area, created_at`

// Create はユーザーを作成し、ストア採番のIDと作成日時を含む全レコードを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, draft model.UserDraft) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user := &model.User{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (name, email, area)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		draft.Name, draft.Email, draft.Area,
	).Scan(&user.UserID, &user.Name, &user.Email, &user.Area, &user.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`,
		id,
	).Scan(&user.UserID, &user.Name, &user.Email, &user.Area, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// ListAll は全ユーザーを返す。並び順はストア定義に委ねる。
func (r *PostgresUserRepo) ListAll(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.UserID, &user.Name, &user.Email, &user.Area, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// Update はパッチで指定されたフィールドのみを上書きする。
// 対象が存在しない場合はnilを返す。パッチが空の場合は現在のレコードをそのまま返す。
func (r *PostgresUserRepo) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 更新対象行をロックして存在確認
	var lockedID int64
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE user_id = $1 FOR UPDATE`, id,
	).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name.Set {
		add("name", patch.Name.Value)
	}
	if patch.Email.Set {
		add("email", patch.Email.Value)
	}
	if patch.Area.Set {
		add("area", patch.Area.Value)
	}

	user := &model.User{}
	if len(sets) == 0 {
		// 空パッチは何も変更せず現在のレコードを返す
		err = tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id,
		).Scan(&user.UserID, &user.Name, &user.Email, &user.Area, &user.CreatedAt)
	} else {
		args = append(args, id)
		query := fmt.Sprintf(
			`UPDATE users SET %s WHERE user_id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), userColumns,
		)
		err = tx.QueryRowContext(ctx, query, args...).Scan(
			&user.UserID, &user.Name, &user.Email, &user.Area, &user.CreatedAt,
		)
	}
	if err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// Delete は指定IDのユーザーを削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
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
var _ UserRepository = (*PostgresUserRepo)(nil)
