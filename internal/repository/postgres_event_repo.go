package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/auravtc/backend/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// scanEvent は1行分のイベントレコードをスキャンする。参加者は含まない。
func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	event := &model.Event{}
	var maxParticipants sql.NullInt64
	err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.EventType,
		&event.DateTime, &event.Location, &maxParticipants,
		&event.CreatedBy, &event.CreatedAt, &event.IsActive,
	)
	if err != nil {
		return nil, err
	}
	event.MaxParticipants = int(maxParticipants.Int64)
	return event, nil
}

// FindByID は指定IDのイベントを参加者リスト付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, event_type, date_time, location,
		   max_participants, created_by, created_at, is_active
		 FROM events WHERE id = $1`,
		id,
	)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event by ID: %w", err)
	}

	participants, err := r.listParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Participants = participants

	return event, nil
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	var maxParticipants any
	if event.MaxParticipants > 0 {
		maxParticipants = event.MaxParticipants
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, event_type, date_time, location,
		   max_participants, created_by, created_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Title, event.Description, event.EventType,
		event.DateTime, event.Location, maxParticipants,
		event.CreatedBy, event.CreatedAt, event.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// ListActive はis_active = trueのイベント一覧を参加者リスト付きで返す。
func (r *PostgresEventRepo) ListActive(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, event_type, date_time, location,
		   max_participants, created_by, created_at, is_active
		 FROM events WHERE is_active = TRUE ORDER BY date_time`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	for _, event := range events {
		participants, err := r.listParticipants(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		event.Participants = participants
	}

	return events, nil
}

// AddParticipant はユーザーをイベント参加者に追加する。
// イベント行をFOR UPDATEでロックしてから重複参加と定員を検査するため、
// 並行する参加リクエストが定員を超えて成功することはない。
func (r *PostgresEventRepo) AddParticipant(ctx context.Context, eventID, userID string) (JoinOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxParticipants sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&maxParticipants)
	if err == sql.ErrNoRows {
		return JoinEventNotFound, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock event: %w", err)
	}

	var joined bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&joined)
	if err != nil {
		return 0, fmt.Errorf("failed to check participation: %w", err)
	}
	if joined {
		return JoinAlreadyJoined, nil
	}

	if maxParticipants.Valid {
		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM event_participants WHERE event_id = $1`,
			eventID,
		).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= int(maxParticipants.Int64) {
			return JoinEventFull, nil
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event_participants (event_id, user_id, joined_at)
		 VALUES ($1, $2, $3)`,
		eventID, userID, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return JoinOK, nil
}

// listParticipants はイベントの参加者IDを参加登録順で返す。
func (r *PostgresEventRepo) listParticipants(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM event_participants WHERE event_id = $1 ORDER BY joined_at`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
