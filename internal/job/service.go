// Package job は貨物ジョブのライフサイクル管理ドメインロジックを提供する。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/auravtc/backend/internal/model"
	"github.com/auravtc/backend/internal/repository"
)

// Sanitizer はユーザー入力テキストの無害化インターフェース。
type Sanitizer interface {
	Sanitize(text string) string
}

// JobMetrics はジョブ操作のメトリクス記録インターフェース。
type JobMetrics interface {
	RecordJobCreated()
	RecordJobAssigned()
	RecordJobCompleted(distance float64)
}

// CreateInput はジョブ作成の入力。
type CreateInput struct {
	Title           string
	Description     string
	Cargo           string
	OriginCity      string
	DestinationCity string
	Distance        float64
	Reward          int
	Difficulty      string
	Deadline        *time.Time
}

// Service はジョブライフサイクルのサービス層。
// 状態遷移 available → assigned → {in_progress, delivered} を強制し、
// 配送完了時のスタッツ加算をリポジトリのトランザクションに委譲する。
type Service struct {
	jobRepo   repository.JobRepository
	userRepo  repository.UserRepository
	sanitizer Sanitizer
	metrics   JobMetrics
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(jobRepo repository.JobRepository, userRepo repository.UserRepository, sanitizer Sanitizer, metrics JobMetrics) *Service {
	return &Service{
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// List はジョブ一覧を返す。statusが空でない場合は完全一致でフィルタする。
// 未定義のstatus値はValidationErrorとして拒否する。
func (s *Service) List(ctx context.Context, status string) ([]*model.Job, error) {
	filter := model.JobStatus(status)
	if status != "" && !filter.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("不正なジョブステータスです: %s", status))
	}

	jobs, err := s.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ジョブ一覧の取得に失敗しました: %w", err)
	}
	return jobs, nil
}

// Create は新しいジョブをavailable状態で作成する。
// 呼び出し元の認可（manager/admin）はルーティング層で強制される。
func (s *Service) Create(ctx context.Context, caller *model.User, input CreateInput) (*model.Job, error) {
	if input.Title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if input.Distance <= 0 {
		return nil, model.NewValidationError("距離は正の値で指定してください")
	}
	if input.Reward <= 0 {
		return nil, model.NewValidationError("報酬は正の値で指定してください")
	}

	job := &model.Job{
		ID:              uuid.NewString(),
		Title:           s.sanitize(input.Title),
		Description:     s.sanitize(input.Description),
		Cargo:           s.sanitize(input.Cargo),
		OriginCity:      s.sanitize(input.OriginCity),
		DestinationCity: s.sanitize(input.DestinationCity),
		Distance:        input.Distance,
		Reward:          input.Reward,
		Difficulty:      s.sanitize(input.Difficulty),
		Status:          model.JobStatusAvailable,
		CreatedBy:       caller.ID,
		CreatedAt:       s.now(),
		Deadline:        input.Deadline,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("ジョブの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordJobCreated()
	}

	slog.Info("job created",
		slog.String("job_id", job.ID),
		slog.String("created_by", caller.ID),
	)

	return job, nil
}

// Assign はavailable状態のジョブをドライバーに割り当てる。
// 割当先ユーザーはロールを問わず任意の既存ユーザーを許可する。
func (s *Service) Assign(ctx context.Context, jobID, driverID string) error {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("ジョブの取得に失敗しました: %w", err)
	}
	if job == nil {
		return model.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusAvailable {
		return model.NewJobNotAvailableError(job.Status)
	}

	driver, err := s.userRepo.FindByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("ドライバーの取得に失敗しました: %w", err)
	}
	if driver == nil {
		return model.NewUserNotFoundError(driverID)
	}

	// 条件付きUPDATE。読み取り後に状態が変わっていた場合はここで拒否される。
	assigned, err := s.jobRepo.Assign(ctx, jobID, driver.ID, driver.Name, s.now())
	if err != nil {
		return fmt.Errorf("ジョブの割当に失敗しました: %w", err)
	}
	if !assigned {
		// 事前読み取りのステータスは古い。競合相手が変更した後の
		// 状態を読み直してエラーに反映する。
		current, findErr := s.jobRepo.FindByID(ctx, jobID)
		if findErr == nil && current != nil {
			return model.NewJobNotAvailableError(current.Status)
		}
		return model.NewJobNotAvailableError(job.Status)
	}

	if s.metrics != nil {
		s.metrics.RecordJobAssigned()
	}

	slog.Info("job assigned",
		slog.String("job_id", jobID),
		slog.String("driver_id", driverID),
	)

	return nil
}

// Complete はジョブを配送完了にし、割当ドライバーのスタッツを加算する。
// 割当ドライバー本人またはmanager/adminのみ実行できる。
// ステータス更新とスタッツ加算は単一トランザクションで適用される。
func (s *Service) Complete(ctx context.Context, caller *model.User, jobID string) error {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("ジョブの取得に失敗しました: %w", err)
	}
	if job == nil {
		return model.NewJobNotFoundError(jobID)
	}

	isAssignedDriver := job.AssignedDriverID != "" && job.AssignedDriverID == caller.ID
	isStaff := caller.Role == model.RoleManager || caller.Role == model.RoleAdmin
	if !isAssignedDriver && !isStaff {
		return model.NewForbiddenError()
	}

	completed, ok, err := s.jobRepo.CompleteAndCredit(ctx, jobID, s.now())
	if err != nil {
		return fmt.Errorf("ジョブの完了処理に失敗しました: %w", err)
	}
	if completed == nil {
		return model.NewJobNotFoundError(jobID)
	}
	if !ok {
		// delivered済みを含め、完了可能な状態ではない
		return model.NewJobNotCompletableError(completed.Status)
	}

	if s.metrics != nil {
		s.metrics.RecordJobCompleted(completed.Distance)
	}

	slog.Info("job completed",
		slog.String("job_id", jobID),
		slog.String("driver_id", completed.AssignedDriverID),
	)

	return nil
}

func (s *Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}
