package handler

import (
	"context"
	"net/http"

	"github.com/auravtc/backend/internal/model"
)

// StatsServiceInterface は統計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	// Compute は会社全体の統計を集計して返す。
	Compute(ctx context.Context) (*model.CompanyStats, error)
}

// StatsHandler は会社統計のHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// companyStatsResponse は会社統計のAPIレスポンス。
type companyStatsResponse struct {
	TotalDrivers    int     `json:"total_drivers"`
	TotalDeliveries int     `json:"total_deliveries"`
	TotalDistance   float64 `json:"total_distance"`
	ActiveDrivers   int     `json:"active_drivers"`
	PendingJobs     int     `json:"pending_jobs"`
	UpcomingEvents  int     `json:"upcoming_events"`
}

// Get は会社統計を取得する。統計はリクエストごとに再計算される。
// GET /api/company/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Compute(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, companyStatsResponse{
		TotalDrivers:    stats.TotalDrivers,
		TotalDeliveries: stats.TotalDeliveries,
		TotalDistance:   stats.TotalDistance,
		ActiveDrivers:   stats.ActiveDrivers,
		PendingJobs:     stats.PendingJobs,
		UpcomingEvents:  stats.UpcomingEvents,
	})
}
