package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/auravtc/backend/internal/model"
	"github.com/auravtc/backend/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTTL time.Duration // セッション有効期間
}

// AuthMetrics はIdPセッション交換結果のメトリクス記録インターフェース。
type AuthMetrics interface {
	RecordAuthSuccess()
	RecordAuthFailure()
}

// Service はIdPセッション交換とセッション管理のビジネスロジックを提供する。
// ユーザーの作成・アップサートはこの経路のみで行われる。
// IdPを経由しない自己登録エンドポイントは存在しない。
type Service struct {
	provider    SessionProvider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     AuthMetrics
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	provider SessionProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics AuthMetrics,
	config ServiceConfig,
) *Service {
	if config.SessionTTL <= 0 {
		config.SessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		provider:    provider,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// ProcessSession はIdP発行のワンタイムセッションIDを処理し、セッションを発行する。
// メールアドレスで既存ユーザーを特定し、未登録の場合はdriverロールの
// 新規ユーザーを作成する。IdP呼び出しの失敗はすべてInvalidSessionに
// 丸め、上流のエラー詳細は呼び出し元へ返さない。
func (s *Service) ProcessSession(ctx context.Context, oneTimeID string) (*model.User, *model.Session, error) {
	if oneTimeID == "" {
		s.recordAuthFailure()
		return nil, nil, model.NewInvalidSessionError()
	}

	data, err := s.provider.FetchSessionData(ctx, oneTimeID)
	if err != nil {
		slog.Warn("identity provider session exchange failed",
			slog.String("error", err.Error()),
		)
		s.recordAuthFailure()
		return nil, nil, model.NewInvalidSessionError()
	}

	now := time.Now()

	user, err := s.userRepo.FindByEmail(ctx, data.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user != nil {
		// 既存ユーザー: last_activeを更新して再利用する
		if err := s.userRepo.TouchLastActive(ctx, user.ID, now); err != nil {
			return nil, nil, fmt.Errorf("failed to update last_active: %w", err)
		}
		user.LastActive = now
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
		)
	} else {
		// 新規ユーザー: 最小権限のdriverロール、スタッツゼロで作成する
		user = &model.User{
			ID:         uuid.New().String(),
			Email:      data.Email,
			Name:       data.Name,
			Picture:    data.Picture,
			Role:       model.RoleDriver,
			JoinDate:   now,
			LastActive: now,
			IsActive:   true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	}

	// ユーザーごとの同時セッション数に上限は設けない
	session := &model.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		SessionToken: data.SessionToken,
		ExpiresAt:    now.Add(s.config.SessionTTL),
		CreatedAt:    now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordAuthSuccess()
	}

	return user, session, nil
}

func (s *Service) recordAuthFailure() {
	if s.metrics != nil {
		s.metrics.RecordAuthFailure()
	}
}

// CurrentUser はセッショントークンから現在のユーザーを解決する。
// トークンが無効・期限切れ・所有者不明の場合は(nil, nil)を返す。
// 「セッションなし」はエラーではなく未認証として扱う。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Logout は指定ユーザーの全セッションを破棄する。
// 現在のトークンだけでなく、並行して発行済みの他セッションも無効化する。
func (s *Service) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	slog.Info("user logged out", slog.String("user_id", userID))
	return nil
}
