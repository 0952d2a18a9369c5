package job

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/auravtc/backend/internal/model"
	"github.com/auravtc/backend/internal/repository"
)

// --- モック定義 ---

type mockJobRepository struct {
	findByIDFn          func(ctx context.Context, id string) (*model.Job, error)
	createFn            func(ctx context.Context, job *model.Job) error
	listFn              func(ctx context.Context, status model.JobStatus) ([]*model.Job, error)
	assignFn            func(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error)
	completeAndCreditFn func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error)
}

func (m *mockJobRepository) FindByID(ctx context.Context, id string) (*model.Job, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockJobRepository) Create(ctx context.Context, job *model.Job) error {
	if m.createFn != nil {
		return m.createFn(ctx, job)
	}
	return nil
}

func (m *mockJobRepository) List(ctx context.Context, status model.JobStatus) ([]*model.Job, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status)
	}
	return nil, nil
}

func (m *mockJobRepository) Assign(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error) {
	if m.assignFn != nil {
		return m.assignFn(ctx, jobID, driverID, driverName, at)
	}
	return false, nil
}

func (m *mockJobRepository) CompleteAndCredit(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
	if m.completeAndCreditFn != nil {
		return m.completeAndCreditFn(ctx, jobID, at)
	}
	return nil, false, nil
}

type mockUserRepository struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (m *mockUserRepository) ListActive(ctx context.Context) ([]*model.User, error) {
	return nil, nil
}

var _ repository.JobRepository = (*mockJobRepository)(nil)
var _ repository.UserRepository = (*mockUserRepository)(nil)

func newTestService(jobRepo *mockJobRepository, userRepo *mockUserRepository) *Service {
	svc := NewService(jobRepo, userRepo, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// --- テスト ---

func TestCreate_Manager_CreatesAvailableJob(t *testing.T) {
	var saved *model.Job
	jobRepo := &mockJobRepository{
		createFn: func(ctx context.Context, job *model.Job) error {
			saved = job
			return nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})
	caller := &model.User{ID: "m1", Role: model.RoleManager}

	job, err := svc.Create(context.Background(), caller, CreateInput{
		Title:           "Hamburg to Berlin",
		Description:     "Express delivery",
		Cargo:           "Electronics",
		OriginCity:      "Hamburg",
		DestinationCity: "Berlin",
		Distance:        289.5,
		Reward:          1200,
		Difficulty:      "Easy",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != model.JobStatusAvailable {
		t.Errorf("Status = %q, want %q", job.Status, model.JobStatusAvailable)
	}
	if job.CreatedBy != "m1" {
		t.Errorf("CreatedBy = %q, want %q", job.CreatedBy, "m1")
	}
	if job.ID == "" {
		t.Error("ID should be generated")
	}
	if saved == nil || saved.ID != job.ID {
		t.Errorf("saved = %+v, want job %s persisted", saved, job.ID)
	}
}

func TestCreate_InvalidDistance_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockJobRepository{}, &mockUserRepository{})
	caller := &model.User{ID: "m1", Role: model.RoleManager}

	_, err := svc.Create(context.Background(), caller, CreateInput{
		Title:    "Bad job",
		Distance: -5,
		Reward:   100,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("err = %v, want validation APIError", err)
	}
}

func TestList_UnknownStatusFilter_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockJobRepository{}, &mockUserRepository{})

	_, err := svc.List(context.Background(), "teleported")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("err = %v, want validation APIError", err)
	}
}

func TestList_EmptyFilter_PassesThrough(t *testing.T) {
	var capturedStatus model.JobStatus
	jobRepo := &mockJobRepository{
		listFn: func(ctx context.Context, status model.JobStatus) ([]*model.Job, error) {
			capturedStatus = status
			return []*model.Job{{ID: "j1"}}, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})

	jobs, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedStatus != "" {
		t.Errorf("status filter = %q, want empty", capturedStatus)
	}
	if len(jobs) != 1 {
		t.Errorf("len(jobs) = %d, want 1", len(jobs))
	}
}

func TestAssign_AvailableJob_Succeeds(t *testing.T) {
	var assignedDriverName string
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAvailable}, nil
		},
		assignFn: func(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error) {
			assignedDriverName = driverName
			return true, nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d1", Name: "Taro", Role: model.RoleDriver}, nil
		},
	}
	svc := newTestService(jobRepo, userRepo)

	if err := svc.Assign(context.Background(), "j1", "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assignedDriverName != "Taro" {
		t.Errorf("driverName = %q, want %q", assignedDriverName, "Taro")
	}
}

func TestAssign_AlreadyAssignedJob_ReturnsInvalidState(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAssigned, AssignedDriverID: "d1"}, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})

	err := svc.Assign(context.Background(), "j1", "d2")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotAvailable {
		t.Errorf("err = %v, want job not available APIError", err)
	}
}

func TestAssign_JobNotFound_ReturnsNotFound(t *testing.T) {
	svc := newTestService(&mockJobRepository{}, &mockUserRepository{})

	err := svc.Assign(context.Background(), "missing", "d1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotFound {
		t.Errorf("err = %v, want job not found APIError", err)
	}
}

func TestAssign_DriverNotFound_ReturnsNotFound(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAvailable}, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})

	err := svc.Assign(context.Background(), "j1", "ghost")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("err = %v, want user not found APIError", err)
	}
}

// 読み取りと更新の間に別リクエストが割当を完了した場合、
// 条件付きUPDATEが失敗して2件目は拒否される。
func TestAssign_ConcurrentAssignment_SecondLoses(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAvailable}, nil
		},
		assignFn: func(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error) {
			return false, nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d2", Name: "Jiro"}, nil
		},
	}
	svc := newTestService(jobRepo, userRepo)

	err := svc.Assign(context.Background(), "j1", "d2")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotAvailable {
		t.Errorf("err = %v, want job not available APIError", err)
	}
}

func TestAssign_ConcurrentAssignment_ErrorReflectsCurrentStatus(t *testing.T) {
	// 事前読み取り時点ではavailableだが、条件付きUPDATEに負けた時点では
	// 既にassignedになっている。エラーは読み直した状態を報告すべき。
	calls := 0
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			calls++
			if calls == 1 {
				return &model.Job{ID: "j1", Status: model.JobStatusAvailable}, nil
			}
			return &model.Job{ID: "j1", Status: model.JobStatusAssigned, AssignedDriverID: "d1"}, nil
		},
		assignFn: func(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error) {
			return false, nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d2", Name: "Jiro"}, nil
		},
	}
	svc := newTestService(jobRepo, userRepo)

	err := svc.Assign(context.Background(), "j1", "d2")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotAvailable {
		t.Fatalf("err = %v, want job not available APIError", err)
	}
	if !strings.Contains(apiErr.Message, string(model.JobStatusAssigned)) {
		t.Errorf("Message = %q, want current status %q reported", apiErr.Message, model.JobStatusAssigned)
	}
	if calls < 2 {
		t.Errorf("FindByID calls = %d, want re-read after lost assignment", calls)
	}
}

func TestComplete_AssignedDriver_Succeeds(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAssigned, AssignedDriverID: "d1", Distance: 500}, nil
		},
		completeAndCreditFn: func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusDelivered, AssignedDriverID: "d1", Distance: 500}, true, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})
	caller := &model.User{ID: "d1", Role: model.RoleDriver}

	if err := svc.Complete(context.Background(), caller, "j1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComplete_OtherDriver_ReturnsForbidden(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAssigned, AssignedDriverID: "d1"}, nil
		},
		completeAndCreditFn: func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
			t.Fatal("CompleteAndCredit should not be called")
			return nil, false, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})
	caller := &model.User{ID: "d2", Role: model.RoleDriver}

	err := svc.Complete(context.Background(), caller, "j1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("err = %v, want forbidden APIError", err)
	}
}

func TestComplete_ManagerOnBehalfOfDriver_Succeeds(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusInProgress, AssignedDriverID: "d1"}, nil
		},
		completeAndCreditFn: func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusDelivered, AssignedDriverID: "d1"}, true, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})
	caller := &model.User{ID: "m1", Role: model.RoleManager}

	if err := svc.Complete(context.Background(), caller, "j1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComplete_AvailableJob_ReturnsInvalidState(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAvailable}, nil
		},
		completeAndCreditFn: func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusAvailable}, false, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})
	caller := &model.User{ID: "m1", Role: model.RoleManager}

	err := svc.Complete(context.Background(), caller, "j1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotCompletable {
		t.Errorf("err = %v, want job not completable APIError", err)
	}
}

// delivered済みジョブの再完了は拒否され、スタッツは再加算されない。
func TestComplete_DeliveredJob_RejectedIdempotently(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusDelivered, AssignedDriverID: "d1"}, nil
		},
		completeAndCreditFn: func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
			return &model.Job{ID: "j1", Status: model.JobStatusDelivered, AssignedDriverID: "d1"}, false, nil
		},
	}
	svc := newTestService(jobRepo, &mockUserRepository{})
	caller := &model.User{ID: "d1", Role: model.RoleDriver}

	err := svc.Complete(context.Background(), caller, "j1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotCompletable {
		t.Errorf("err = %v, want job not completable APIError", err)
	}
}

func TestComplete_JobNotFound_ReturnsNotFound(t *testing.T) {
	svc := newTestService(&mockJobRepository{}, &mockUserRepository{})
	caller := &model.User{ID: "m1", Role: model.RoleAdmin}

	err := svc.Complete(context.Background(), caller, "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotFound {
		t.Errorf("err = %v, want job not found APIError", err)
	}
}

// 作成 → 割当 → 完了のフルライフサイクルをインメモリ状態で通す。
func TestJobLifecycle_CreateAssignComplete(t *testing.T) {
	store := map[string]*model.Job{}
	jobRepo := &mockJobRepository{
		createFn: func(ctx context.Context, job *model.Job) error {
			copied := *job
			store[job.ID] = &copied
			return nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Job, error) {
			if j, ok := store[id]; ok {
				copied := *j
				return &copied, nil
			}
			return nil, nil
		},
		assignFn: func(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error) {
			j := store[jobID]
			if j == nil || j.Status != model.JobStatusAvailable {
				return false, nil
			}
			j.Status = model.JobStatusAssigned
			j.AssignedDriverID = driverID
			j.AssignedDriverName = driverName
			j.AssignedAt = &at
			return true, nil
		},
		completeAndCreditFn: func(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error) {
			j := store[jobID]
			if j == nil {
				return nil, false, nil
			}
			if j.Status != model.JobStatusAssigned && j.Status != model.JobStatusInProgress {
				copied := *j
				return &copied, false, nil
			}
			j.Status = model.JobStatusDelivered
			j.CompletedAt = &at
			copied := *j
			return &copied, true, nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Taro", Role: model.RoleDriver}, nil
		},
	}
	svc := newTestService(jobRepo, userRepo)
	manager := &model.User{ID: "m1", Role: model.RoleManager}
	driver := &model.User{ID: "d1", Role: model.RoleDriver}

	job, err := svc.Create(context.Background(), manager, CreateInput{
		Title: "Lifecycle", Distance: 100, Reward: 500,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Assign(context.Background(), job.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got := store[job.ID].Status; got != model.JobStatusAssigned {
		t.Fatalf("status after assign = %q, want assigned", got)
	}

	if err := svc.Complete(context.Background(), driver, job.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := store[job.ID].Status; got != model.JobStatusDelivered {
		t.Errorf("status after complete = %q, want delivered", got)
	}
	if store[job.ID].CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}

	// 2回目の完了は拒否される
	err = svc.Complete(context.Background(), driver, job.ID)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotCompletable {
		t.Errorf("second complete err = %v, want job not completable APIError", err)
	}
}
