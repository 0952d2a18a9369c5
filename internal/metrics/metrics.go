// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 利用側は必要なメソッドだけを含む小さなインターフェースを
// 各パッケージ側で定義して受け取る。
type Collector struct {
	httpStatus    *prometheus.CounterVec
	authSuccess   prometheus.Counter
	authFail      prometheus.Counter
	jobsCreated   prometheus.Counter
	jobsAssigned  prometheus.Counter
	jobsCompleted prometheus.Counter
	distanceTotal prometheus.Counter
	eventsJoined  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_auth_success_total",
			Help: "IdPセッション交換成功の合計数",
		}),
		authFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_auth_fail_total",
			Help: "IdPセッション交換失敗の合計数",
		}),
		jobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_jobs_created_total",
			Help: "作成されたジョブの合計数",
		}),
		jobsAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_jobs_assigned_total",
			Help: "割当されたジョブの合計数",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_jobs_completed_total",
			Help: "配送完了したジョブの合計数",
		}),
		distanceTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_delivered_distance_km_total",
			Help: "配送完了した走行距離の合計（km）",
		}),
		eventsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aura_event_joins_total",
			Help: "イベント参加登録の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.authSuccess,
		c.authFail,
		c.jobsCreated,
		c.jobsAssigned,
		c.jobsCompleted,
		c.distanceTotal,
		c.eventsJoined,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAuthSuccess はIdPセッション交換成功を記録する。
func (c *Collector) RecordAuthSuccess() {
	c.authSuccess.Inc()
}

// RecordAuthFailure はIdPセッション交換失敗を記録する。
func (c *Collector) RecordAuthFailure() {
	c.authFail.Inc()
}

// RecordJobCreated はジョブ作成を記録する。
func (c *Collector) RecordJobCreated() {
	c.jobsCreated.Inc()
}

// RecordJobAssigned はジョブ割当を記録する。
func (c *Collector) RecordJobAssigned() {
	c.jobsAssigned.Inc()
}

// RecordJobCompleted は配送完了と走行距離を記録する。
func (c *Collector) RecordJobCompleted(distance float64) {
	c.jobsCompleted.Inc()
	c.distanceTotal.Add(distance)
}

// RecordEventJoined はイベント参加登録を記録する。
func (c *Collector) RecordEventJoined() {
	c.eventsJoined.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
