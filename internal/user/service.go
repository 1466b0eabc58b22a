// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
	"github.com/hitoshi/taskman/internal/validation"
)

// TaskCounter はユーザーを参照しているタスク数の取得インターフェース。
// 削除時の参照チェックで使用する。
// repository.TaskRepositoryを直接要求せず、最小限のインターフェースとして定義する。
type TaskCounter interface {
	// CountByUserID は指定ユーザーを担当とするタスク数を返す。
	CountByUserID(ctx context.Context, userID int64) (int, error)
}

// Service はユーザー管理のサービス層。
// 入力検証・サニタイズ・削除時の参照チェックを担い、永続化はリポジトリに委ねる。
type Service struct {
	userRepo    repository.UserRepository
	taskCounter TaskCounter
	sanitizer   security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	taskCounter TaskCounter,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		userRepo:    userRepo,
		taskCounter: taskCounter,
		sanitizer:   sanitizer,
	}
}

// Create は入力を検証・サニタイズしたうえでユーザーを作成し、全レコードを返す。
func (s *Service) Create(ctx context.Context, draft model.UserDraft) (*model.User, error) {
	if apiErr := validation.UserCreate(draft); apiErr != nil {
		return nil, apiErr
	}

	draft.Name = s.sanitizer.Sanitize(draft.Name)
	draft.Area = s.sanitizer.Sanitize(draft.Area)

	user, err := s.userRepo.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user created", slog.Int64("user_id", user.UserID))
	return user, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Update はパッチで指定されたフィールドのみを更新し、更新後のレコードを返す。
// 存在しない場合はNotFoundエラーを返す。
func (s *Service) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	if apiErr := validation.UserUpdate(patch); apiErr != nil {
		return nil, apiErr
	}

	if patch.Name.Set {
		patch.Name.Value = s.sanitizer.Sanitize(patch.Name.Value)
	}
	if patch.Area.Set {
		patch.Area.Value = s.sanitizer.Sanitize(patch.Area.Value)
	}

	user, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	return user, nil
}

// Delete は指定IDのユーザーを削除する。存在しない場合はNotFoundエラーを返す。
// 担当タスクが残っているユーザーの削除は制約違反として拒否する（restrict方式）。
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.taskCounter.CountByUserID(ctx, id)
	if err != nil {
		return fmt.Errorf("参照タスク数の取得に失敗しました: %w", err)
	}
	if count > 0 {
		return model.NewConstraintViolationError(
			fmt.Sprintf("このユーザーを担当とするタスクが%d件存在するため削除できません", count),
		)
	}

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewUserNotFoundError(id)
	}

	slog.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
