// Package stats は会社統計の集計ドメインロジックを提供する。
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/auravtc/backend/internal/model"
	"github.com/auravtc/backend/internal/repository"
)

// activeWindow はactive_driversの判定に使うlast_activeの遡及期間。
const activeWindow = 7 * 24 * time.Hour

// Service は会社統計のサービス層。
// 統計は永続化せず、呼び出しごとに再計算する。
type Service struct {
	statsRepo repository.StatsRepository
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(statsRepo repository.StatsRepository) *Service {
	return &Service{
		statsRepo: statsRepo,
		now:       time.Now,
	}
}

// Compute は会社全体の統計を集計して返す。
// total_deliveriesとtotal_distanceは退会済みユーザーを含む全ユーザーの合計。
func (s *Service) Compute(ctx context.Context) (*model.CompanyStats, error) {
	now := s.now()

	totalDrivers, err := s.statsRepo.CountActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("ドライバー数の集計に失敗しました: %w", err)
	}

	activeDrivers, err := s.statsRepo.CountActiveUsersSince(ctx, now.Add(-activeWindow))
	if err != nil {
		return nil, fmt.Errorf("アクティブドライバー数の集計に失敗しました: %w", err)
	}

	totalDeliveries, totalDistance, err := s.statsRepo.SumUserTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("配送実績の集計に失敗しました: %w", err)
	}

	pendingJobs, err := s.statsRepo.CountPendingJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("保留ジョブ数の集計に失敗しました: %w", err)
	}

	upcomingEvents, err := s.statsRepo.CountUpcomingEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("今後のイベント数の集計に失敗しました: %w", err)
	}

	return &model.CompanyStats{
		TotalDrivers:    totalDrivers,
		TotalDeliveries: totalDeliveries,
		TotalDistance:   totalDistance,
		ActiveDrivers:   activeDrivers,
		PendingJobs:     pendingJobs,
		UpcomingEvents:  upcomingEvents,
	}, nil
}
