package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/auravtc/backend/internal/metrics"
	"github.com/auravtc/backend/internal/middleware"
	"github.com/auravtc/backend/internal/model"
)

// Pinger はヘルスチェックでのDB疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver    middleware.SessionResolver
	CORSAllowedOrigins []string
	MetricsRecorder    middleware.StatusRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	UserService  UserServiceInterface
	JobService   JobServiceInterface
	EventService EventServiceInterface
	StatsService StatsServiceInterface

	// 運用
	DB       Pinger
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → (Session → RequireRole)
//
// /health と /metrics は/apiプレフィックスの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	jobHandler := NewJobHandler(deps.JobService)
	eventHandler := NewEventHandler(deps.EventService)
	statsHandler := NewStatsHandler(deps.StatsService)

	requireStaff := middleware.NewRequireRoleMiddleware(model.RoleManager, model.RoleAdmin)

	// --- 運用エンドポイント（/apiプレフィックス外） ---

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		// --- 認証不要のルート ---

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"message": "Aura Virtual Trucking Company API",
			})
		})
		r.Post("/auth/process-session", authHandler.ProcessSession)

		// --- 認証が必要なルート ---

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			// ユーザー管理
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
			})

			// ジョブ管理
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", jobHandler.List)
				r.With(requireStaff).Post("/", jobHandler.Create)
				r.With(requireStaff).Post("/{id}/assign/{driverID}", jobHandler.Assign)
				r.Post("/{id}/complete", jobHandler.Complete)
			})

			// イベント管理
			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventHandler.List)
				r.With(requireStaff).Post("/", eventHandler.Create)
				r.Post("/{id}/join", eventHandler.Join)
			})

			// 会社統計
			r.Get("/company/stats", statsHandler.Get)
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
