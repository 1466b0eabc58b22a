package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/middleware"
)

// HealthChecker はデータベース接続の疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 監視
	HealthChecker HealthChecker
	Collector     metrics.MetricsCollector
	Gatherer      prometheus.Gatherer

	// ドメインサービス
	UserService    UserServiceInterface
	ProjectService ProjectServiceInterface
	TaskService    TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → SecurityHeaders → CORS → Logging → Metrics
//
// レート制限はAPIルートにのみ適用し、/healthと/metricsは対象外とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(metrics.NewMiddleware(deps.Collector))

	userHandler := NewUserHandler(deps.UserService)
	projectHandler := NewProjectHandler(deps.ProjectService)
	taskHandler := NewTaskHandler(deps.TaskService)

	// --- 監視ルート（レート制限の対象外） ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)、書き込み系にはRateLimit(Mutation)を追加
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		// ユーザー管理
		r.Route("/api/user", func(r chi.Router) {
			r.With(mutation).Post("/", userHandler.Create)
			r.Get("/", userHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.With(mutation).Put("/", userHandler.Update)
				r.With(mutation).Delete("/", userHandler.Delete)
			})
		})

		// プロジェクト管理
		r.Route("/api/project", func(r chi.Router) {
			r.With(mutation).Post("/", projectHandler.Create)
			r.Get("/", projectHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.With(mutation).Put("/", projectHandler.Update)
				r.With(mutation).Delete("/", projectHandler.Delete)
			})
		})

		// タスク管理
		r.Route("/api/task", func(r chi.Router) {
			r.With(mutation).Post("/", taskHandler.Create)
			r.Get("/", taskHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.With(mutation).Put("/", taskHandler.Update)
				r.With(mutation).Delete("/", taskHandler.Delete)
			})
		})
	})

	return r
}

// newHealthHandler はデータベースの疎通確認を行うヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
