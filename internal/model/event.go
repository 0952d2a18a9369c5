// Package model はドメインモデルを定義する。
package model

import "time"

// EventType はコミュニティイベントの種別を表す。
type EventType string

const (
	// EventTypeConvoy は複数ドライバーによる隊列走行イベント。
	EventTypeConvoy EventType = "convoy"
	// EventTypeMeeting はミーティングイベント。
	EventTypeMeeting EventType = "meeting"
	// EventTypeTraining はトレーニングイベント。
	EventTypeTraining EventType = "training"
	// EventTypeCompetition は競技イベント。
	EventTypeCompetition EventType = "competition"
)

// Valid はイベント種別が定義済みの値であるかを返す。
func (t EventType) Valid() bool {
	switch t {
	case EventTypeConvoy, EventTypeMeeting, EventTypeTraining, EventTypeCompetition:
		return true
	}
	return false
}

// Event はスケジュールされたコミュニティイベントを表す。
// Participantsは参加登録順のユーザーID列。同一ユーザーは高々1回出現する。
// MaxParticipantsが0の場合は定員なし。
type Event struct {
	ID              string
	Title           string
	Description     string
	EventType       EventType
	DateTime        time.Time
	Location        string
	MaxParticipants int
	Participants    []string
	CreatedBy       string
	CreatedAt       time.Time
	IsActive        bool
}

// Full は定員が設定されており参加者数が定員に達しているかを返す。
func (e *Event) Full() bool {
	return e.MaxParticipants > 0 && len(e.Participants) >= e.MaxParticipants
}

// HasParticipant は指定ユーザーが参加済みかを返す。
func (e *Event) HasParticipant(userID string) bool {
	for _, id := range e.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// CompanyStats は会社全体の集計値を表す読み取り専用モデル。
// 永続化せず、リクエストごとにusers/jobs/eventsコレクションから再計算する。
type CompanyStats struct {
	TotalDrivers    int
	TotalDeliveries int
	TotalDistance   float64
	ActiveDrivers   int
	PendingJobs     int
	UpcomingEvents  int
}
