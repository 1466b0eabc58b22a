// Package project はプロジェクト管理のドメインロジックを提供する。
package project

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
	"github.com/hitoshi/taskman/internal/validation"
)

// TaskCounter はプロジェクトを参照しているタスク数の取得インターフェース。
// 削除時の参照チェックで使用する。
type TaskCounter interface {
	// CountByProjectID は指定プロジェクトを参照しているタスク数を返す。
	CountByProjectID(ctx context.Context, projectID int64) (int, error)
}

// Service はプロジェクト管理のサービス層。
type Service struct {
	projectRepo repository.ProjectRepository
	taskCounter TaskCounter
	sanitizer   security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	projectRepo repository.ProjectRepository,
	taskCounter TaskCounter,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		taskCounter: taskCounter,
		sanitizer:   sanitizer,
	}
}

// Create は入力を検証・サニタイズしたうえでプロジェクトを作成し、全レコードを返す。
func (s *Service) Create(ctx context.Context, draft model.ProjectDraft) (*model.Project, error) {
	if apiErr := validation.ProjectCreate(draft); apiErr != nil {
		return nil, apiErr
	}

	draft.ProjectName = s.sanitizer.Sanitize(draft.ProjectName)
	draft.ProjectDescription = s.sanitizer.Sanitize(draft.ProjectDescription)

	project, err := s.projectRepo.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	slog.Info("project created", slog.Int64("project_id", project.ProjectID))
	return project, nil
}

// Get は指定IDのプロジェクトを返す。存在しない場合はNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(id)
	}
	return project, nil
}

// List は全プロジェクトを返す。
func (s *Service) List(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	return projects, nil
}

// Update はパッチで指定されたフィールドのみを更新し、更新後のレコードを返す。
// 存在しない場合はNotFoundエラーを返す。
func (s *Service) Update(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	if apiErr := validation.ProjectUpdate(patch); apiErr != nil {
		return nil, apiErr
	}

	if patch.ProjectName.Set {
		patch.ProjectName.Value = s.sanitizer.Sanitize(patch.ProjectName.Value)
	}
	if patch.ProjectDescription.Set {
		patch.ProjectDescription.Value = s.sanitizer.Sanitize(patch.ProjectDescription.Value)
	}

	project, err := s.projectRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの更新に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(id)
	}

	return project, nil
}

// Delete は指定IDのプロジェクトを削除する。存在しない場合はNotFoundエラーを返す。
// 参照しているタスクが残っているプロジェクトの削除は制約違反として拒否する（restrict方式）。
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.taskCounter.CountByProjectID(ctx, id)
	if err != nil {
		return fmt.Errorf("参照タスク数の取得に失敗しました: %w", err)
	}
	if count > 0 {
		return model.NewConstraintViolationError(
			fmt.Sprintf("このプロジェクトを参照しているタスクが%d件存在するため削除できません", count),
		)
	}

	deleted, err := s.projectRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("プロジェクトの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewProjectNotFoundError(id)
	}

	slog.Info("project deleted", slog.Int64("project_id", id))
	return nil
}
