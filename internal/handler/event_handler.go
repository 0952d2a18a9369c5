package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/auravtc/backend/internal/event"
	"github.com/auravtc/backend/internal/middleware"
	"github.com/auravtc/backend/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// ListActive はアクティブなイベント一覧を返す。
	ListActive(ctx context.Context) ([]*model.Event, error)
	// Create は新しいイベントを作成する。
	Create(ctx context.Context, caller *model.User, input event.CreateInput) (*model.Event, error)
	// Join は呼び出し元をイベント参加者に追加する。
	Join(ctx context.Context, caller *model.User, eventID string) error
}

// EventHandler はイベント管理のHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{
		service: service,
	}
}

// eventResponse はイベント情報のAPIレスポンス。
// participantsは参加登録順を保持する。
type eventResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EventType       string    `json:"event_type"`
	DateTime        time.Time `json:"date_time"`
	Location        string    `json:"location"`
	MaxParticipants int       `json:"max_participants,omitempty"`
	Participants    []string  `json:"participants"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	IsActive        bool      `json:"is_active"`
}

func toEventResponse(e *model.Event) eventResponse {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return eventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		EventType:       string(e.EventType),
		DateTime:        e.DateTime,
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		Participants:    participants,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		IsActive:        e.IsActive,
	}
}

// eventCreateRequest はイベント作成リクエストのボディ。
type eventCreateRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EventType       string    `json:"event_type"`
	DateTime        time.Time `json:"date_time"`
	Location        string    `json:"location"`
	MaxParticipants int       `json:"max_participants"`
}

// List はアクティブなイベント一覧を取得する。
// GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]eventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create は新しいイベントを作成する。
// POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req eventCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	created, err := h.service.Create(r.Context(), caller, event.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		EventType:       req.EventType,
		DateTime:        req.DateTime,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(created))
}

// Join は呼び出し元をイベントに参加登録する。
// POST /api/events/{id}/join
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	eventID := chi.URLParam(r, "id")

	if err := h.service.Join(r.Context(), caller, eventID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Joined event successfully",
	})
}
