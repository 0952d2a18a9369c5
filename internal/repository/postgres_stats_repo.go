package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/auravtc/backend/internal/model"
)

// PostgresStatsRepo はPostgreSQLを使用した会社統計の集計リポジトリ。
type PostgresStatsRepo struct {
	db *sql.DB
}

// NewPostgresStatsRepo はPostgresStatsRepoを生成する。
func NewPostgresStatsRepo(db *sql.DB) *PostgresStatsRepo {
	return &PostgresStatsRepo{db: db}
}

// CountActiveUsers はis_active = trueのユーザー数を返す。
func (r *PostgresStatsRepo) CountActiveUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_active = TRUE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// CountActiveUsersSince はis_active = trueかつlast_active >= sinceのユーザー数を返す。
func (r *PostgresStatsRepo) CountActiveUsersSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_active = TRUE AND last_active >= $1`,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recently active users: %w", err)
	}
	return count, nil
}

// SumUserTotals は全ユーザーのtotal_deliveriesとtotal_distanceの合計を返す。
// 非アクティブユーザーも含める。累積実績は退会後も会社の歴史として保持される。
func (r *PostgresStatsRepo) SumUserTotals(ctx context.Context) (int, float64, error) {
	var deliveries int
	var distance float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_deliveries), 0), COALESCE(SUM(total_distance), 0)
		 FROM users`,
	).Scan(&deliveries, &distance)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum user totals: %w", err)
	}
	return deliveries, distance, nil
}

// CountPendingJobs はstatusがavailableまたはassignedのジョブ数を返す。
func (r *PostgresStatsRepo) CountPendingJobs(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE status = $1 OR status = $2`,
		model.JobStatusAvailable, model.JobStatusAssigned,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return count, nil
}

// CountUpcomingEvents はis_active = trueかつdate_time >= nowのイベント数を返す。
func (r *PostgresStatsRepo) CountUpcomingEvents(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE is_active = TRUE AND date_time >= $1`,
		now,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming events: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ StatsRepository = (*PostgresStatsRepo)(nil)
