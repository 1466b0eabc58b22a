package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/taskman/internal/model"
)

// ProjectServiceInterface はプロジェクトサービスのインターフェース。
type ProjectServiceInterface interface {
	Create(ctx context.Context, draft model.ProjectDraft) (*model.Project, error)
	Get(ctx context.Context, id int64) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectHandler はプロジェクト関連のHTTPハンドラー。
type ProjectHandler struct {
	projectService ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerの新しいインスタンスを生成する。
func NewProjectHandler(projectService ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// createProjectRequest はプロジェクト作成リクエストのボディ。
type createProjectRequest struct {
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
}

// Create はPOST /api/project/のハンドラー。
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	project, err := h.projectService.Create(r.Context(), model.ProjectDraft{
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(project))
}

// List はGET /api/project/のハンドラー。
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, toProjectResponse(p))
	}

	writeJSON(w, http.StatusOK, responses)
}

// Get はGET /api/project/{id}のハンドラー。
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	project, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(project))
}

// Update はPUT /api/project/{id}のハンドラー。
// ボディに含まれるキーのみを更新する（部分更新）。
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	var patch model.ProjectPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	project, err := h.projectService.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(project))
}

// Delete はDELETE /api/project/{id}のハンドラー。
// 所属タスクが残っているプロジェクトは削除できない。
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
