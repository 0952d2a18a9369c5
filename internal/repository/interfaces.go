// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/auravtc/backend/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// メールアドレスはIdP経由のアップサートにおけるユーザーの同一性キー。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile はプロフィールフィールド（name, picture, truckers_mp_id,
	// steam_id, role）を更新する。スタッツフィールドは対象外。
	UpdateProfile(ctx context.Context, user *model.User) error

	// TouchLastActive はlast_activeを指定時刻に更新する。
	TouchLastActive(ctx context.Context, id string, at time.Time) error

	// ListActive はis_active = trueのユーザー一覧を返す。
	ListActive(ctx context.Context) ([]*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンの未失効セッションを取得する。
	// 存在しない、または期限切れの場合はnilを返す（エラーではない）。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	// ログアウトは現在のトークンだけでなく全セッションを無効化する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// JobRepository はジョブデータの永続化インターフェース。
type JobRepository interface {
	// FindByID は指定IDのジョブを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Job, error)

	// Create はジョブを作成する。
	Create(ctx context.Context, job *model.Job) error

	// List はジョブ一覧を返す。statusが空でない場合は完全一致でフィルタする。
	List(ctx context.Context, status model.JobStatus) ([]*model.Job, error)

	// Assign はavailable状態のジョブをドライバーに割り当てる。
	// 条件付きUPDATEのため、状態が既に変わっていた場合はfalseを返す。
	Assign(ctx context.Context, jobID, driverID, driverName string, at time.Time) (bool, error)

	// CompleteAndCredit はジョブを完了し、割当ドライバーのスタッツを
	// 同一トランザクションで加算する。ステータス更新とスタッツ加算は
	// 両方適用されるか、どちらも適用されないかのいずれか。
	// ジョブが存在しない場合は(nil, false, nil)、完了可能な状態でない
	// 場合は(現在のジョブ, false, nil)を返す。
	CompleteAndCredit(ctx context.Context, jobID string, at time.Time) (*model.Job, bool, error)
}

// JoinOutcome はイベント参加操作の結果を表す。
type JoinOutcome int

const (
	// JoinOK は参加登録成功。
	JoinOK JoinOutcome = iota
	// JoinEventNotFound はイベントが存在しない。
	JoinEventNotFound
	// JoinAlreadyJoined は既に参加済み。
	JoinAlreadyJoined
	// JoinEventFull は定員超過。
	JoinEventFull
)

// EventRepository はイベントデータの永続化インターフェース。
type EventRepository interface {
	// FindByID は指定IDのイベントを参加者リスト付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// ListActive はis_active = trueのイベント一覧を参加者リスト付きで返す。
	ListActive(ctx context.Context) ([]*model.Event, error)

	// AddParticipant はユーザーをイベント参加者に追加する。
	// イベント行をロックした上で重複参加と定員を検査するため、
	// 並行する参加リクエストでも定員超過は発生しない。
	AddParticipant(ctx context.Context, eventID, userID string) (JoinOutcome, error)
}

// StatsRepository は会社統計の集計クエリインターフェース。
// 集計は呼び出しごとに再計算され、キャッシュしない。
type StatsRepository interface {
	// CountActiveUsers はis_active = trueのユーザー数を返す。
	CountActiveUsers(ctx context.Context) (int, error)

	// CountActiveUsersSince はis_active = trueかつlast_active >= sinceの
	// ユーザー数を返す。
	CountActiveUsersSince(ctx context.Context, since time.Time) (int, error)

	// SumUserTotals は全ユーザー（非アクティブ含む）のtotal_deliveriesと
	// total_distanceの合計を返す。過去の実績は退会後も保持される。
	SumUserTotals(ctx context.Context) (int, float64, error)

	// CountPendingJobs はstatusがavailableまたはassignedのジョブ数を返す。
	CountPendingJobs(ctx context.Context) (int, error)

	// CountUpcomingEvents はis_active = trueかつdate_time >= nowの
	// イベント数を返す。
	CountUpcomingEvents(ctx context.Context, now time.Time) (int, error)
}
