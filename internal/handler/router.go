package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/commcal/internal/metrics"
	"github.com/hitoshi/commcal/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	AccountFinder     middleware.AccountFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// イベント・参加登録・フィードバック
	EventService    EventServiceInterface
	SignupService   SignupServiceInterface
	FeedbackService FeedbackServiceInterface

	// アカウント・管理者
	AccountService AccountServiceInterface

	// エクスポート
	EventFinder  EventFinder
	RosterLister RosterLister
	BaseURL      string

	// メトリクス
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → RequestLogging → Metrics、
//	認証グループでは Session → RateLimit(General)、
//	管理者グループではさらに RequireAdmin → RateLimit(AdminOps)
//
// 認証ルート（/auth/*）と公開ルートはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(newMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	eventHandler := NewEventHandler(deps.EventService, deps.Metrics)
	signupHandler := NewSignupHandler(deps.SignupService, deps.Metrics)
	feedbackHandler := NewFeedbackHandler(deps.FeedbackService, deps.Metrics)
	accountHandler := NewAccountHandler(deps.AccountService)
	exportHandler := NewExportHandler(deps.EventFinder, deps.RosterLister, deps.BaseURL)

	sessionMW := middleware.NewSessionMiddleware(deps.SessionFinder)
	adminMW := middleware.NewRequireAdminMiddleware(deps.AccountFinder)

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 公開カレンダー
	r.Get("/api/events", eventHandler.ListMonth)
	r.Get("/api/events/{id}", eventHandler.Get)
	r.Get("/api/events/{id}/share", exportHandler.Share)
	r.Get("/api/calendar.ics", exportHandler.Calendar)

	// --- サインインが必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(sessionMW)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 参加登録
		r.Post("/api/events/{id}/signup", signupHandler.SignUp)
		r.Delete("/api/events/{id}/signup", signupHandler.SignOut)

		// フィードバック（自分の分）
		r.Put("/api/events/{id}/feedback", feedbackHandler.Submit)
		r.Get("/api/events/{id}/feedback", feedbackHandler.Own)

		// ダッシュボードと組織名簿
		r.Get("/api/dashboard", eventHandler.Dashboard)
		r.Get("/api/organization", accountHandler.Organization)
		r.Get("/api/accounts/{id}/avatar", accountHandler.Avatar)
	})

	// --- 管理者専用ルート ---
	// ミドルウェアスタック: Session → RequireAdmin → RateLimit(AdminOps)
	r.Group(func(r chi.Router) {
		r.Use(sessionMW)
		r.Use(adminMW)
		r.Use(deps.RateLimiter.AdminOpsMiddleware())

		// イベント管理
		r.Post("/api/events", eventHandler.Create)
		r.Put("/api/events/{id}", eventHandler.Update)
		r.Delete("/api/events/{id}", eventHandler.Delete)

		// 名簿エクスポートとフィードバックレビュー
		r.Get("/api/events/{id}/export.csv", exportHandler.RosterCSV)
		r.Get("/api/feedbacks", feedbackHandler.MonthIndex)

		// 管理者管理
		r.Get("/api/admins", accountHandler.ListAdmins)
		r.Post("/api/admins", accountHandler.CreateAdmin)
		r.Delete("/api/admins/{id}", accountHandler.RemoveAdmin)
	})

	return r
}

// metricsRecorder はレスポンスのステータスコードを記録する。
type metricsRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (mr *metricsRecorder) WriteHeader(code int) {
	if !mr.written {
		mr.statusCode = code
		mr.written = true
	}
	mr.ResponseWriter.WriteHeader(code)
}

func (mr *metricsRecorder) Write(b []byte) (int, error) {
	if !mr.written {
		mr.statusCode = http.StatusOK
		mr.written = true
	}
	return mr.ResponseWriter.Write(b)
}

// newMetricsMiddleware はHTTPステータスとレイテンシのメトリクスを記録するミドルウェアを返す。
func newMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
			collector.RecordRequestLatency(time.Since(start))
		})
	}
}
