// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleDriver は一般ドライバーロール。新規ユーザーのデフォルト。
	RoleDriver Role = "driver"
	// RoleManager は配車・イベント管理を行うマネージャーロール。
	RoleManager Role = "manager"
	// RoleAdmin はロール変更を含む全操作が可能な管理者ロール。
	RoleAdmin Role = "admin"
)

// Valid はロールが定義済みの値であるかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleDriver, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User は仮想運送会社のメンバーを表す。
// 累積スタッツ（experience_points, total_distance, total_deliveries）は
// ジョブ完了時にのみ加算される単調増加フィールド。
type User struct {
	ID               string
	Email            string
	Name             string
	Picture          string
	Role             Role
	TruckersMPID     string
	SteamID          string
	ExperiencePoints int
	TotalDistance    float64
	TotalDeliveries  int
	JoinDate         time.Time
	LastActive       time.Time
	IsActive         bool
}

// Session はユーザーのログインセッションを表す。
// SessionTokenは外部IdPが発行する推測不能なopaqueトークン。
type Session struct {
	ID           string
	UserID       string
	SessionToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
