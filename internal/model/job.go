// Package model はドメインモデルを定義する。
package model

import "time"

// JobStatus は貨物ジョブのライフサイクル状態を表す。
// available → assigned → {in_progress, delivered} と進行し、
// delivered と cancelled は終端状態。
type JobStatus string

const (
	// JobStatusAvailable は未割当のジョブ状態。
	JobStatusAvailable JobStatus = "available"
	// JobStatusAssigned はドライバーに割当済みのジョブ状態。
	JobStatusAssigned JobStatus = "assigned"
	// JobStatusInProgress は配送中のジョブ状態。
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusDelivered は配送完了の終端状態。
	JobStatusDelivered JobStatus = "delivered"
	// JobStatusCancelled はキャンセル済みの終端状態。
	// 現時点でこの状態へ遷移する操作は提供していない。
	JobStatusCancelled JobStatus = "cancelled"
)

// Valid はジョブ状態が定義済みの値であるかを返す。
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusAvailable, JobStatusAssigned, JobStatusInProgress,
		JobStatusDelivered, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal は終端状態（以降の遷移が存在しない状態）であるかを返す。
func (s JobStatus) Terminal() bool {
	return s == JobStatusDelivered || s == JobStatusCancelled
}

// Job は貨物配送ジョブを表す。
// AssignedDriverNameは割当時点のユーザー名のスナップショット（非正規化）。
type Job struct {
	ID                 string
	Title              string
	Description        string
	Cargo              string
	OriginCity         string
	DestinationCity    string
	Distance           float64
	Reward             int
	Difficulty         string
	Status             JobStatus
	AssignedDriverID   string
	AssignedDriverName string
	CreatedBy          string
	CreatedAt          time.Time
	AssignedAt         *time.Time
	CompletedAt        *time.Time
	Deadline           *time.Time
}
