// Package task はタスク管理のドメインロジックを提供する。
//
// タスクの読み取りレスポンスには関連するプロジェクトと担当ユーザーの
// 全レコードを埋め込む。埋め込みは遅延ロードに頼らず、タスク取得後に
// 参照先をIDで明示的に取得して組み立てる。
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
	"github.com/hitoshi/taskman/internal/validation"
)

// ProjectFinder はタスクに埋め込むプロジェクトの取得インターフェース。
type ProjectFinder interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Project, error)
}

// UserFinder はタスクに埋め込む担当ユーザーの取得インターフェース。
type UserFinder interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Service はタスク管理のサービス層。
// 入力検証・サニタイズ・読み取り時の関連エンティティ合成を担う。
// 外部キーの実在チェックは行わず、違反はストアの制約エラーとして呼び出し側に返す。
type Service struct {
	taskRepo  repository.TaskRepository
	projects  ProjectFinder
	users     UserFinder
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	taskRepo repository.TaskRepository,
	projects ProjectFinder,
	users UserFinder,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		taskRepo:  taskRepo,
		projects:  projects,
		users:     users,
		sanitizer: sanitizer,
	}
}

// Create は入力を検証・サニタイズしたうえでタスクを作成し、
// プロジェクトと担当ユーザーを埋め込んだレコードを返す。
// 存在しないproject_id / user_idを参照した場合は制約エラーとなり、タスクは永続化されない。
func (s *Service) Create(ctx context.Context, draft model.TaskDraft) (*model.TaskDetail, error) {
	if apiErr := validation.TaskCreate(draft); apiErr != nil {
		return nil, apiErr
	}

	draft.TaskName = s.sanitizer.Sanitize(draft.TaskName)
	draft.TaskDescription = s.sanitizer.Sanitize(draft.TaskDescription)

	created, err := s.taskRepo.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	slog.Info("task created",
		slog.Int64("task_id", created.TaskID),
		slog.Int64("project_id", created.ProjectID),
		slog.Int64("user_id", created.UserID),
	)

	return s.compose(ctx, created)
}

// Get は指定IDのタスクを関連エンティティ付きで返す。
// 存在しない場合はNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.TaskDetail, error) {
	found, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	return s.compose(ctx, found)
}

// List は全タスクを関連エンティティ付きで返す。
// 同一のプロジェクト・ユーザーは1回だけ取得して使い回す。
func (s *Service) List(ctx context.Context) ([]*model.TaskDetail, error) {
	tasks, err := s.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}

	projectCache := make(map[int64]*model.Project)
	userCache := make(map[int64]*model.User)

	details := make([]*model.TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		project, ok := projectCache[t.ProjectID]
		if !ok {
			project, err = s.fetchProject(ctx, t.ProjectID)
			if err != nil {
				return nil, err
			}
			projectCache[t.ProjectID] = project
		}

		user, ok := userCache[t.UserID]
		if !ok {
			user, err = s.fetchUser(ctx, t.UserID)
			if err != nil {
				return nil, err
			}
			userCache[t.UserID] = user
		}

		details = append(details, &model.TaskDetail{
			Task:        *t,
			Project:     *project,
			Responsible: *user,
		})
	}

	return details, nil
}

// Update はパッチで指定されたフィールドのみを更新し、
// 更新後のレコードを関連エンティティ付きで返す。存在しない場合はNotFoundエラーを返す。
func (s *Service) Update(ctx context.Context, id int64, patch model.TaskPatch) (*model.TaskDetail, error) {
	if apiErr := validation.TaskUpdate(patch); apiErr != nil {
		return nil, apiErr
	}

	if patch.TaskName.Set {
		patch.TaskName.Value = s.sanitizer.Sanitize(patch.TaskName.Value)
	}
	if patch.TaskDescription.Set {
		patch.TaskDescription.Value = s.sanitizer.Sanitize(patch.TaskDescription.Value)
	}

	updated, err := s.taskRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewTaskNotFoundError(id)
	}

	return s.compose(ctx, updated)
}

// Delete は指定IDのタスクを削除し、削除前のレコードを関連エンティティ付きで返す。
// 呼び出し側が「何が削除されたか」を表示できるようにするため。
// 存在しない場合はNotFoundエラーを返す。
func (s *Service) Delete(ctx context.Context, id int64) (*model.TaskDetail, error) {
	deleted, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if deleted == nil {
		return nil, model.NewTaskNotFoundError(id)
	}

	slog.Info("task deleted", slog.Int64("task_id", id))

	// 参照先はrestrict削除で守られているため、削除直前まで存在していたタスクの
	// プロジェクトとユーザーはこの時点でも取得できる
	return s.compose(ctx, deleted)
}

// compose はタスクに関連するプロジェクトと担当ユーザーを取得して結合レコードを組み立てる。
func (s *Service) compose(ctx context.Context, t *model.Task) (*model.TaskDetail, error) {
	project, err := s.fetchProject(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}

	user, err := s.fetchUser(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	return &model.TaskDetail{
		Task:        *t,
		Project:     *project,
		Responsible: *user,
	}, nil
}

// fetchProject は埋め込み用のプロジェクトを取得する。
// 外部キー制約により参照先は常に存在するはずで、欠落は整合性破れとして内部エラー扱いとする。
func (s *Service) fetchProject(ctx context.Context, projectID int64) (*model.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("関連プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("参照先のプロジェクトが欠落しています: project_id=%d", projectID)
	}
	return project, nil
}

// fetchUser は埋め込み用の担当ユーザーを取得する。
func (s *Service) fetchUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("担当ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("参照先のユーザーが欠落しています: user_id=%d", userID)
	}
	return user, nil
}
