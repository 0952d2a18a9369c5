// Package user はユーザープロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"

	"github.com/auravtc/backend/internal/model"
	"github.com/auravtc/backend/internal/repository"
)

// Sanitizer はユーザー入力テキストの無害化インターフェース。
type Sanitizer interface {
	Sanitize(text string) string
}

// UpdateInput はプロフィール更新の入力。
// nilのフィールドは変更しない。
type UpdateInput struct {
	Name         *string
	TruckersMPID *string
	SteamID      *string
	Role         *string
}

// Service はユーザープロフィール管理のサービス層。
// 一覧取得、個別取得、更新のビジネスロジックと認可判定を提供する。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sanitizer Sanitizer) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// List はアクティブなユーザー一覧を返す。
// 呼び出し元がmanagerまたはadminでない場合はForbiddenを返す。
func (s *Service) List(ctx context.Context, caller *model.User) ([]*model.User, error) {
	if caller.Role != model.RoleManager && caller.Role != model.RoleAdmin {
		return nil, model.NewForbiddenError()
	}

	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Get は指定IDのユーザーを返す。認証済みであれば誰でも参照できる。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// Update は指定ユーザーのプロフィールを更新し、更新後のユーザーを返す。
// 非ロールフィールドは本人またはmanager/adminが更新できる。
// ロール変更は対象が誰であってもadminのみ許可される。
func (s *Service) Update(ctx context.Context, caller *model.User, targetID string, input UpdateInput) (*model.User, error) {
	isSelf := caller.ID == targetID
	isStaff := caller.Role == model.RoleManager || caller.Role == model.RoleAdmin
	if !isSelf && !isStaff {
		return nil, model.NewForbiddenError()
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError(targetID)
	}

	if input.Name != nil {
		target.Name = s.sanitize(*input.Name)
	}
	if input.TruckersMPID != nil {
		target.TruckersMPID = s.sanitize(*input.TruckersMPID)
	}
	if input.SteamID != nil {
		target.SteamID = s.sanitize(*input.SteamID)
	}

	// ロールフィールドの指定自体をadmin限定とする（値が現在と同じでも拒否）
	if input.Role != nil {
		if caller.Role != model.RoleAdmin {
			return nil, model.NewRoleChangeForbiddenError()
		}
		role := model.Role(*input.Role)
		if !role.Valid() {
			return nil, model.NewValidationError(fmt.Sprintf("不正なロールです: %s", *input.Role))
		}
		target.Role = role
	}

	if err := s.userRepo.UpdateProfile(ctx, target); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}

	return target, nil
}

func (s *Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}
