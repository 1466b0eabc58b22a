// Package handler はHTTPリクエストの受け付けとレスポンス変換を提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
// detailには人間が読めるエラー説明を格納する。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Area      string    `json:"area"`
	CreatedAt time.Time `json:"created_at"`
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ProjectID          int64     `json:"project_id"`
	ProjectName        string    `json:"project_name"`
	ProjectDescription string    `json:"project_description"`
	CreatedAt          time.Time `json:"created_at"`
}

// taskResponse はタスク情報のAPIレスポンス。
// 外部キーのIDは返さず、関連エンティティの全レコードを埋め込む。
// 呼び出し側が追加のルックアップなしでタスクを表示できるようにするため。
type taskResponse struct {
	TaskID          int64           `json:"task_id"`
	TaskName        string          `json:"task_name"`
	TaskDescription string          `json:"task_description"`
	Status          string          `json:"status"`
	Deadline        time.Time       `json:"deadline"`
	Project         projectResponse `json:"project"`
	Responsible     userResponse    `json:"responsible"`
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Area:      user.Area,
		CreatedAt: user.CreatedAt,
	}
}

// toProjectResponse はmodel.ProjectからAPIレスポンスに変換する。
func toProjectResponse(project *model.Project) projectResponse {
	return projectResponse{
		ProjectID:          project.ProjectID,
		ProjectName:        project.ProjectName,
		ProjectDescription: project.ProjectDescription,
		CreatedAt:          project.CreatedAt,
	}
}

// toTaskResponse はmodel.TaskDetailからAPIレスポンスに変換する。
func toTaskResponse(detail *model.TaskDetail) taskResponse {
	return taskResponse{
		TaskID:          detail.TaskID,
		TaskName:        detail.TaskName,
		TaskDescription: detail.TaskDescription,
		Status:          string(detail.Status),
		Deadline:        detail.Deadline,
		Project:         toProjectResponse(&detail.Project),
		Responsible:     toUserResponse(&detail.Responsible),
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Detail:   apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外のエラー（ストア障害など）は詳細をログのみに記録し、
// 外部には一般的な内部エラーメッセージを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewStoreError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeConstraintViolation:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound, model.ErrCodeProjectNotFound, model.ErrCodeTaskNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parseIDParam はURLパラメータのidを整数として解析する。
// 解析できない場合はバリデーションエラーを返す。
func parseIDParam(r *http.Request) (int64, *model.APIError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, model.NewValidationError([]model.FieldError{
			{Field: "id", Reason: "整数で指定してください"},
		})
	}
	return id, nil
}

// invalidBodyError はJSONボディの解析失敗を表すバリデーションエラーを生成する。
func invalidBodyError() *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeValidationFailed,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}
