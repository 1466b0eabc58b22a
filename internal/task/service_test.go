package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// --- モック定義 ---

// mockTaskRepo はrepository.TaskRepositoryのモック実装。
type mockTaskRepo struct {
	createFn    func(ctx context.Context, draft model.TaskDraft) (*model.Task, error)
	findByIDFn  func(ctx context.Context, id int64) (*model.Task, error)
	listAllFn   func(ctx context.Context) ([]*model.Task, error)
	updateFn    func(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error)
	deleteFn    func(ctx context.Context, id int64) (*model.Task, error)
	byProjectFn func(ctx context.Context, projectID int64) (int, error)
	byUserFn    func(ctx context.Context, userID int64) (int, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
	return m.createFn(ctx, draft)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockTaskRepo) ListAll(ctx context.Context) ([]*model.Task, error) {
	return m.listAllFn(ctx)
}

func (m *mockTaskRepo) Update(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error) {
	return m.updateFn(ctx, id, patch)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) (*model.Task, error) {
	return m.deleteFn(ctx, id)
}

func (m *mockTaskRepo) CountByProjectID(ctx context.Context, projectID int64) (int, error) {
	if m.byProjectFn != nil {
		return m.byProjectFn(ctx, projectID)
	}
	return 0, nil
}

func (m *mockTaskRepo) CountByUserID(ctx context.Context, userID int64) (int, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx, userID)
	}
	return 0, nil
}

// mockProjectFinder はProjectFinderのモック実装。
type mockProjectFinder struct {
	projects map[int64]*model.Project
	calls    int
}

func (m *mockProjectFinder) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	m.calls++
	return m.projects[id], nil
}

// mockUserFinder はUserFinderのモック実装。
type mockUserFinder struct {
	users map[int64]*model.User
	calls int
}

func (m *mockUserFinder) FindByID(ctx context.Context, id int64) (*model.User, error) {
	m.calls++
	return m.users[id], nil
}

// passthroughSanitizer はサニタイズせずそのまま返すテスト用実装。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

func fixedDeadline() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func validDraft() model.TaskDraft {
	return model.TaskDraft{
		TaskName:        "T1",
		TaskDescription: "d",
		Status:          model.TaskStatusToDo,
		Deadline:        fixedDeadline(),
		ProjectID:       1,
		UserID:          1,
	}
}

func newTestService(repo *mockTaskRepo) (*Service, *mockProjectFinder, *mockUserFinder) {
	projects := &mockProjectFinder{projects: map[int64]*model.Project{
		1: {ProjectID: 1, ProjectName: "P1", ProjectDescription: "d"},
		2: {ProjectID: 2, ProjectName: "P2", ProjectDescription: "d2"},
	}}
	users := &mockUserFinder{users: map[int64]*model.User{
		1: {UserID: 1, Name: "Ana", Email: "ana@x.com", Area: "Eng"},
	}}
	return NewService(repo, projects, users, passthroughSanitizer{}), projects, users
}

// --- Create ---

// 作成レスポンスにプロジェクトと担当ユーザーの全レコードが埋め込まれることを検証
func TestService_Create_EmbedsRelatedEntities(t *testing.T) {
	repo := &mockTaskRepo{
		createFn: func(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
			return &model.Task{
				TaskID:          1,
				TaskName:        draft.TaskName,
				TaskDescription: draft.TaskDescription,
				Status:          draft.Status,
				Deadline:        draft.Deadline,
				ProjectID:       draft.ProjectID,
				UserID:          draft.UserID,
			}, nil
		},
	}

	svc, _, _ := newTestService(repo)
	detail, err := svc.Create(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.TaskID != 1 {
		t.Errorf("TaskID = %d, want 1", detail.TaskID)
	}
	if detail.Project.ProjectID != 1 || detail.Project.ProjectName != "P1" {
		t.Errorf("embedded project = %+v, want full project 1", detail.Project)
	}
	if detail.Responsible.UserID != 1 || detail.Responsible.Email != "ana@x.com" {
		t.Errorf("embedded responsible = %+v, want full user 1", detail.Responsible)
	}
}

// ステータス列挙値の検証がストア到達前に行われることを検証
func TestService_Create_RejectsUnknownStatus(t *testing.T) {
	repoCalled := false
	repo := &mockTaskRepo{
		createFn: func(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
			repoCalled = true
			return nil, nil
		},
	}

	svc, _, _ := newTestService(repo)
	draft := validDraft()
	draft.Status = "Blocked"

	_, err := svc.Create(context.Background(), draft)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repoCalled {
		t.Error("repository must not be called when validation fails")
	}
}

// 外部キー違反（制約エラー）がそのまま呼び出し側に伝わることを検証
func TestService_Create_PropagatesConstraintViolation(t *testing.T) {
	repo := &mockTaskRepo{
		createFn: func(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
			return nil, model.NewConstraintViolationError("参照先のプロジェクトが存在しません")
		},
	}

	svc, _, _ := newTestService(repo)
	_, err := svc.Create(context.Background(), validDraft())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeConstraintViolation {
		t.Errorf("expected constraint violation, got %v", err)
	}
}

// --- Get ---

func TestService_Get_ComposesDetail(t *testing.T) {
	repo := &mockTaskRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Task, error) {
			return &model.Task{TaskID: id, TaskName: "T1", Status: model.TaskStatusDoing, ProjectID: 2, UserID: 1}, nil
		},
	}

	svc, _, _ := newTestService(repo)
	detail, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Project.ProjectName != "P2" {
		t.Errorf("Project.ProjectName = %q, want %q", detail.Project.ProjectName, "P2")
	}
	if detail.Responsible.Name != "Ana" {
		t.Errorf("Responsible.Name = %q, want %q", detail.Responsible.Name, "Ana")
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := &mockTaskRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Task, error) {
			return nil, nil
		},
	}

	svc, _, _ := newTestService(repo)
	_, err := svc.Get(context.Background(), 99)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTaskNotFound {
		t.Errorf("expected task-not-found error, got %v", err)
	}
}

// --- List ---

// 同一の参照先は1回だけ取得されることを検証
func TestService_List_CachesRelatedFetches(t *testing.T) {
	repo := &mockTaskRepo{
		listAllFn: func(ctx context.Context) ([]*model.Task, error) {
			return []*model.Task{
				{TaskID: 1, ProjectID: 1, UserID: 1},
				{TaskID: 2, ProjectID: 1, UserID: 1},
				{TaskID: 3, ProjectID: 2, UserID: 1},
			}, nil
		},
	}

	svc, projects, users := newTestService(repo)
	details, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(details) != 3 {
		t.Fatalf("len = %d, want 3", len(details))
	}
	if projects.calls != 2 {
		t.Errorf("project fetches = %d, want 2 (one per distinct project)", projects.calls)
	}
	if users.calls != 1 {
		t.Errorf("user fetches = %d, want 1 (one per distinct user)", users.calls)
	}
}

// --- Update ---

// ステータスのみのパッチで他フィールドに触れないことを検証
func TestService_Update_PartialPatchOnlyTouchesSetFields(t *testing.T) {
	var gotPatch model.TaskPatch
	repo := &mockTaskRepo{
		updateFn: func(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error) {
			gotPatch = patch
			return &model.Task{
				TaskID: id, TaskName: "T1", TaskDescription: "d",
				Status: model.TaskStatus(patch.Status.Value), Deadline: fixedDeadline(),
				ProjectID: 1, UserID: 1,
			}, nil
		},
	}

	svc, _, _ := newTestService(repo)
	detail, err := svc.Update(context.Background(), 1, model.TaskPatch{Status: model.Some("Doing")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !gotPatch.Status.Set {
		t.Error("status must be set in the patch")
	}
	if gotPatch.TaskName.Set || gotPatch.TaskDescription.Set || gotPatch.Deadline.Set ||
		gotPatch.ProjectID.Set || gotPatch.UserID.Set {
		t.Error("unset fields must stay unset in the patch")
	}
	if detail.Status != model.TaskStatusDoing {
		t.Errorf("Status = %q, want %q", detail.Status, model.TaskStatusDoing)
	}
}

func TestService_Update_RejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(&mockTaskRepo{})
	_, err := svc.Update(context.Background(), 1, model.TaskPatch{Status: model.Some("Blocked")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	repo := &mockTaskRepo{
		updateFn: func(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error) {
			return nil, nil
		},
	}

	svc, _, _ := newTestService(repo)
	_, err := svc.Update(context.Background(), 99, model.TaskPatch{Status: model.Some("Doing")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTaskNotFound {
		t.Errorf("expected task-not-found error, got %v", err)
	}
}

// --- Delete ---

// 削除レスポンスに削除前のレコードが関連エンティティ付きで返ることを検証
func TestService_Delete_ReturnsPriorRecord(t *testing.T) {
	repo := &mockTaskRepo{
		deleteFn: func(ctx context.Context, id int64) (*model.Task, error) {
			return &model.Task{
				TaskID: id, TaskName: "T1", TaskDescription: "d",
				Status: model.TaskStatusFinished, Deadline: fixedDeadline(),
				ProjectID: 1, UserID: 1,
			}, nil
		},
	}

	svc, _, _ := newTestService(repo)
	detail, err := svc.Delete(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.TaskName != "T1" || detail.Status != model.TaskStatusFinished {
		t.Errorf("prior record not returned: %+v", detail.Task)
	}
	if detail.Project.ProjectID != 1 || detail.Responsible.UserID != 1 {
		t.Error("deleted task should still embed its project and responsible user")
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := &mockTaskRepo{
		deleteFn: func(ctx context.Context, id int64) (*model.Task, error) {
			return nil, nil
		},
	}

	svc, _, _ := newTestService(repo)
	_, err := svc.Delete(context.Background(), 99)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTaskNotFound {
		t.Errorf("expected task-not-found error, got %v", err)
	}
}
