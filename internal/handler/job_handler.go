package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/auravtc/backend/internal/job"
	"github.com/auravtc/backend/internal/middleware"
	"github.com/auravtc/backend/internal/model"
)

// JobServiceInterface はジョブハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	// List はジョブ一覧を返す。statusが空でない場合はフィルタする。
	List(ctx context.Context, status string) ([]*model.Job, error)
	// Create は新しいジョブをavailable状態で作成する。
	Create(ctx context.Context, caller *model.User, input job.CreateInput) (*model.Job, error)
	// Assign はavailable状態のジョブをドライバーに割り当てる。
	Assign(ctx context.Context, jobID, driverID string) error
	// Complete はジョブを配送完了にし、ドライバーのスタッツを加算する。
	Complete(ctx context.Context, caller *model.User, jobID string) error
}

// JobHandler はジョブ管理のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{
		service: service,
	}
}

// jobResponse はジョブ情報のAPIレスポンス。
type jobResponse struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Cargo              string     `json:"cargo"`
	OriginCity         string     `json:"origin_city"`
	DestinationCity    string     `json:"destination_city"`
	Distance           float64    `json:"distance"`
	Reward             int        `json:"reward"`
	Difficulty         string     `json:"difficulty"`
	Status             string     `json:"status"`
	AssignedDriverID   string     `json:"assigned_driver_id,omitempty"`
	AssignedDriverName string     `json:"assigned_driver_name,omitempty"`
	CreatedBy          string     `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	AssignedAt         *time.Time `json:"assigned_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Deadline           *time.Time `json:"deadline,omitempty"`
}

func toJobResponse(j *model.Job) jobResponse {
	return jobResponse{
		ID:                 j.ID,
		Title:              j.Title,
		Description:        j.Description,
		Cargo:              j.Cargo,
		OriginCity:         j.OriginCity,
		DestinationCity:    j.DestinationCity,
		Distance:           j.Distance,
		Reward:             j.Reward,
		Difficulty:         j.Difficulty,
		Status:             string(j.Status),
		AssignedDriverID:   j.AssignedDriverID,
		AssignedDriverName: j.AssignedDriverName,
		CreatedBy:          j.CreatedBy,
		CreatedAt:          j.CreatedAt,
		AssignedAt:         j.AssignedAt,
		CompletedAt:        j.CompletedAt,
		Deadline:           j.Deadline,
	}
}

// jobCreateRequest はジョブ作成リクエストのボディ。
type jobCreateRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Cargo           string     `json:"cargo"`
	OriginCity      string     `json:"origin_city"`
	DestinationCity string     `json:"destination_city"`
	Distance        float64    `json:"distance"`
	Reward          int        `json:"reward"`
	Difficulty      string     `json:"difficulty"`
	Deadline        *time.Time `json:"deadline"`
}

// List はジョブ一覧を取得する。statusクエリで完全一致フィルタできる。
// GET /api/jobs?status=available
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		resp[i] = toJobResponse(j)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create は新しいジョブを作成する。
// POST /api/jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req jobCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	created, err := h.service.Create(r.Context(), caller, job.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		Cargo:           req.Cargo,
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		Distance:        req.Distance,
		Reward:          req.Reward,
		Difficulty:      req.Difficulty,
		Deadline:        req.Deadline,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toJobResponse(created))
}

// Assign はジョブをドライバーに割り当てる。
// POST /api/jobs/{id}/assign/{driverID}
func (h *JobHandler) Assign(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	driverID := chi.URLParam(r, "driverID")

	if err := h.service.Assign(r.Context(), jobID, driverID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Job assigned successfully",
	})
}

// Complete はジョブを配送完了にする。
// POST /api/jobs/{id}/complete
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	jobID := chi.URLParam(r, "id")

	if err := h.service.Complete(r.Context(), caller, jobID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Job completed successfully",
	})
}
