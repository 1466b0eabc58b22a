package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// TaskServiceInterface はタスクサービスのインターフェース。
// 読み取り系の戻り値は関連エンティティを埋め込んだ結合レコードとなる。
type TaskServiceInterface interface {
	Create(ctx context.Context, draft model.TaskDraft) (*model.TaskDetail, error)
	Get(ctx context.Context, id int64) (*model.TaskDetail, error)
	List(ctx context.Context) ([]*model.TaskDetail, error)
	Update(ctx context.Context, id int64, patch model.TaskPatch) (*model.TaskDetail, error)
	Delete(ctx context.Context, id int64) (*model.TaskDetail, error)
}

// TaskHandler はタスク関連のHTTPハンドラー。
type TaskHandler struct {
	taskService TaskServiceInterface
}

// NewTaskHandler はTaskHandlerの新しいインスタンスを生成する。
func NewTaskHandler(taskService TaskServiceInterface) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// createTaskRequest はタスク作成リクエストのボディ。
// 参照先はIDで指定し、レスポンスでは全レコードに展開されて返る。
type createTaskRequest struct {
	TaskName        string    `json:"task_name"`
	TaskDescription string    `json:"task_description"`
	Status          string    `json:"status"`
	Deadline        time.Time `json:"deadline"`
	ProjectID       int64     `json:"project_id"`
	UserID          int64     `json:"user_id"`
}

// Create はPOST /api/task/のハンドラー。
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	detail, err := h.taskService.Create(r.Context(), model.TaskDraft{
		TaskName:        req.TaskName,
		TaskDescription: req.TaskDescription,
		Status:          model.TaskStatus(req.Status),
		Deadline:        req.Deadline,
		ProjectID:       req.ProjectID,
		UserID:          req.UserID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(detail))
}

// List はGET /api/task/のハンドラー。
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.taskService.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]taskResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, toTaskResponse(d))
	}

	writeJSON(w, http.StatusOK, responses)
}

// Get はGET /api/task/{id}のハンドラー。
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	detail, err := h.taskService.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(detail))
}

// Update はPUT /api/task/{id}のハンドラー。
// ボディに含まれるキーのみを更新する（部分更新）。
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	detail, err := h.taskService.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(detail))
}

// Delete はDELETE /api/task/{id}のハンドラー。
// 削除前のレコードを関連エンティティ付きで返す。
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	detail, err := h.taskService.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(detail))
}
