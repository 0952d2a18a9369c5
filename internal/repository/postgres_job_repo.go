package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/auravtc/backend/internal/model"
)

const jobColumns = `id, title, description, cargo, origin_city, destination_city,
	distance, reward, difficulty, status, assigned_driver_id, assigned_driver_name,
	created_by, created_at, assigned_at, completed_at, deadline`

// PostgresJobRepo はPostgreSQLを使用したジョブリポジトリ。
type PostgresJobRepo struct {
	db *sql.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: db}
}

// scanJob は1行分のジョブレコードをスキャンする。
func scanJob(row interface{ Scan(...any) error }) (*model.Job, error) {
	job := &model.Job{}
	var driverID, driverName sql.NullString
	err := row.Scan(
		&job.ID, &job.Title, &job.Description, &job.Cargo,
		&job.OriginCity, &job.DestinationCity,
		&job.Distance, &job.Reward, &job.Difficulty, &job.Status,
		&driverID, &driverName,
		&job.CreatedBy, &job.CreatedAt, &job.AssignedAt, &job.CompletedAt, &job.Deadline,
	)
	if err != nil {
		return nil, err
	}
	job.AssignedDriverID = driverID.String
	job.AssignedDriverName = driverName.String
	return job, nil
}

// FindByID は指定IDのジョブを取得する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`,
		id,
	)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job by ID: %w", err)
	}
	return job, nil
}

// Create はジョブを作成する。
func (r *PostgresJobRepo) Create(ctx context.Context, job *model.Job) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, description, cargo, origin_city, destination_city,
		   distance, reward, difficulty, status, created_by, created_at, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		job.ID, job.Title, job.Description, job.Cargo,
		job.OriginCity, job.DestinationCity,
		job.Distance, job.Reward, job.Difficulty, job.Status,
		job.CreatedBy, job.CreatedAt, job.Deadline,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// List はジョブ一覧を返す。statusが空でない場合は完全一致でフィルタする。
func (r *PostgresJobRepo) List(ctx context.Context, status model.JobStatus) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// Assign はavailable状態のジョブをドライバーに割り当てる。
// available以外の状態だった場合は何も更新せずfalseを返すため、
// 並行する割当リクエストのうち成功するのは高々1つ。
func (r *PostgresJobRepo) Assign(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs
		 SET status = $2, assigned_driver_id = $3, assigned_driver_name = $4, assigned_at = $5
		 WHERE id = $1 AND status = $6`,
		jobID, model.JobStatusAssigned, driverID, driverName, at, model.JobStatusAvailable,
	)
	if err != nil {
		return false, fmt.Errorf("failed to assign job: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// CompleteAndCredit はジョブを完了し、割当ドライバーのスタッツを加算する。
// ジョブ行をFOR UPDATEでロックした上で、ステータス更新とスタッツ加算を
// 同一トランザクションで適用する。クラッシュや並行する完了リクエストでも
// 「delivered済みなのにスタッツ未加算」という不整合は発生しない。
func (r *PostgresJobRepo) CompleteAndCredit(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`,
		jobID,
	)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock job: %w", err)
	}

	// 完了可能なのはassignedまたはin_progressのみ。delivered済みへの
	// 再完了は二重加算せず拒否する。
	if job.Status != model.JobStatusAssigned && job.Status != model.JobStatusInProgress {
		return job, false, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE jobs SET status = $2, completed_at = $3 WHERE id = $1`,
		jobID, model.JobStatusDelivered, at,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark job delivered: %w", err)
	}

	if job.AssignedDriverID != "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE users
			 SET total_deliveries = total_deliveries + 1,
			     total_distance = total_distance + $2,
			     experience_points = experience_points + $3
			 WHERE id = $1`,
			job.AssignedDriverID, job.Distance, job.Reward,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to credit driver stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	job.Status = model.JobStatusDelivered
	job.CompletedAt = &at
	return job, true, nil
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
