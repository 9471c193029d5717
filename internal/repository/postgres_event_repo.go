package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/commcal/internal/model"
	"github.com/lib/pq"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

const eventColumns = `id, title, event_date, description, location, category, created_at, updated_at`

// scanEvent は1行をmodel.Eventに読み込む。
func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.EventDate, &e.Description,
		&e.Location, &e.Category, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event by ID: %w", err)
	}
	return event, nil
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, event_date, description, location, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Title, event.EventDate, event.Description,
		event.Location, event.Category, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Update はイベントを更新する。
func (r *PostgresEventRepo) Update(ctx context.Context, event *model.Event) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET title = $2, event_date = $3, description = $4, location = $5, category = $6, updated_at = $7
		 WHERE id = $1`,
		event.ID, event.Title, event.EventDate, event.Description,
		event.Location, event.Category, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", event.ID)
	}
	return nil
}

// DeleteByID は指定IDのイベントを削除する。
// 関連するsignups、feedbacksはCASCADE削除される。
func (r *PostgresEventRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", id)
	}
	return nil
}

// ListBetween は開催時刻が[from, to)の範囲にあるイベントを開催時刻昇順で返す。
// 上端は排他的なので、月初同士を渡せば月境界のイベントが重複計上されない。
// categoriesが空でない場合は該当カテゴリのみに絞り込む。
func (r *PostgresEventRepo) ListBetween(ctx context.Context, from, to time.Time, categories []model.Category) ([]*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_date >= $1 AND event_date < $2`
	args := []any{from, to}

	if len(categories) > 0 {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		query += ` AND category = ANY($3)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY event_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListAll は全イベントを開催時刻昇順で返す。
func (r *PostgresEventRepo) ListAll(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_date`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list all events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListSignedUpBefore は指定アカウントが参加登録済みで、
// 開催時刻がtより前のイベントを開催時刻降順で最大limit件返す。
func (r *PostgresEventRepo) ListSignedUpBefore(ctx context.Context, accountID string, t time.Time, limit int) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.title, e.event_date, e.description, e.location, e.category, e.created_at, e.updated_at
		 FROM events e
		 JOIN signups s ON s.event_id = e.id
		 WHERE s.account_id = $1 AND e.event_date < $2
		 ORDER BY e.event_date DESC
		 LIMIT $3`,
		accountID, t, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list past signed-up events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListSignedUpAfter は指定アカウントが参加登録済みで、
// 開催時刻がt以降のイベントを開催時刻昇順で最大limit件返す。
func (r *PostgresEventRepo) ListSignedUpAfter(ctx context.Context, accountID string, t time.Time, limit int) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.title, e.event_date, e.description, e.location, e.category, e.created_at, e.updated_at
		 FROM events e
		 JOIN signups s ON s.event_id = e.id
		 WHERE s.account_id = $1 AND e.event_date >= $2
		 ORDER BY e.event_date
		 LIMIT $3`,
		accountID, t, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming signed-up events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// collectEvents は結果セットをイベントのスライスに読み込む。
func collectEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return events, nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
