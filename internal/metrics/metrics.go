// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordSignupCreated()
	RecordSignupDenied(reason string)
	RecordFeedbackUpserted()
	RecordFeedbackDenied()
	RecordEventCreated(category string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signupCreated    prometheus.Counter
	signupDenied     *prometheus.CounterVec
	feedbackUpserted prometheus.Counter
	feedbackDenied   prometheus.Counter
	eventCreated     *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commcal_signups_created_total",
			Help: "作成された参加登録の合計数",
		}),
		signupDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commcal_signups_denied_total",
			Help: "拒否された参加登録の理由別合計数",
		}, []string{"reason"}),
		feedbackUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commcal_feedbacks_upserted_total",
			Help: "保存されたフィードバックの合計数",
		}),
		feedbackDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commcal_feedbacks_denied_total",
			Help: "適格性ゲートで拒否されたフィードバックの合計数",
		}),
		eventCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commcal_events_created_total",
			Help: "作成されたイベントのカテゴリ別合計数",
		}, []string{"category"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commcal_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "commcal_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signupCreated,
		c.signupDenied,
		c.feedbackUpserted,
		c.feedbackDenied,
		c.eventCreated,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignupCreated は参加登録の作成を記録する。
func (c *Collector) RecordSignupCreated() {
	c.signupCreated.Inc()
}

// RecordSignupDenied は参加登録の拒否を理由付きで記録する。
func (c *Collector) RecordSignupDenied(reason string) {
	c.signupDenied.WithLabelValues(reason).Inc()
}

// RecordFeedbackUpserted はフィードバックの保存を記録する。
func (c *Collector) RecordFeedbackUpserted() {
	c.feedbackUpserted.Inc()
}

// RecordFeedbackDenied はフィードバックの拒否を記録する。
func (c *Collector) RecordFeedbackDenied() {
	c.feedbackDenied.Inc()
}

// RecordEventCreated はイベントの作成をカテゴリ付きで記録する。
func (c *Collector) RecordEventCreated(category string) {
	c.eventCreated.WithLabelValues(category).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
