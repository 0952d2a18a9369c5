// Package event はコミュニティイベントの参加管理ドメインロジックを提供する。
package event

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

// EventMetrics はイベント操作のメトリクス記録インターフェース。
type EventMetrics interface {
	RecordEventJoined()
}

// CreateInput はイベント作成の入力。
// MaxParticipantsが0の場合は定員なし。
type CreateInput struct {
	Title           string
	Description     string
	EventType       string
	DateTime        time.Time
	Location        string
	MaxParticipants int
}

// Service はイベント管理のサービス層。
// 参加登録の重複と定員の強制はリポジトリのトランザクションに委譲する。
type Service struct {
	eventRepo repository.EventRepository
	sanitizer Sanitizer
	metrics   EventMetrics
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(eventRepo repository.EventRepository, sanitizer Sanitizer, metrics EventMetrics) *Service {
	return &Service{
		eventRepo: eventRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// ListActive はアクティブなイベント一覧を参加登録順の参加者リスト付きで返す。
func (s *Service) ListActive(ctx context.Context) ([]*model.Event, error) {
	events, err := s.eventRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	return events, nil
}

// Create は新しいイベントを作成する。
// 呼び出し元の認可（manager/admin）はルーティング層で強制される。
func (s *Service) Create(ctx context.Context, caller *model.User, input CreateInput) (*model.Event, error) {
	if input.Title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	eventType := model.EventType(input.EventType)
	if !eventType.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("不正なイベント種別です: %s", input.EventType))
	}
	if input.MaxParticipants < 0 {
		return nil, model.NewValidationError("定員は0以上で指定してください")
	}

	event := &model.Event{
		ID:              uuid.NewString(),
		Title:           s.sanitize(input.Title),
		Description:     s.sanitize(input.Description),
		EventType:       eventType,
		DateTime:        input.DateTime,
		Location:        s.sanitize(input.Location),
		MaxParticipants: input.MaxParticipants,
		Participants:    []string{},
		CreatedBy:       caller.ID,
		CreatedAt:       s.now(),
		IsActive:        true,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("イベントの作成に失敗しました: %w", err)
	}

	slog.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(eventType)),
		slog.String("created_by", caller.ID),
	)

	return event, nil
}

// Join は呼び出し元をイベント参加者に追加する。
// 重複参加と定員超過は拒否される。参加登録は冪等ではない。
func (s *Service) Join(ctx context.Context, caller *model.User, eventID string) error {
	outcome, err := s.eventRepo.AddParticipant(ctx, eventID, caller.ID)
	if err != nil {
		return fmt.Errorf("イベント参加登録に失敗しました: %w", err)
	}

	switch outcome {
	case repository.JoinOK:
		// 登録成功
	case repository.JoinEventNotFound:
		return model.NewEventNotFoundError(eventID)
	case repository.JoinAlreadyJoined:
		return model.NewAlreadyJoinedError()
	case repository.JoinEventFull:
		return model.NewEventFullError()
	default:
		return fmt.Errorf("不明な参加結果です: %d", outcome)
	}

	if s.metrics != nil {
		s.metrics.RecordEventJoined()
	}

	slog.Info("event joined",
		slog.String("event_id", eventID),
		slog.String("user_id", caller.ID),
	)

	return nil
}

func (s *Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}
