package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/commcal/internal/model"
	"github.com/lib/pq"
)

// PostgresSignupRepo はPostgreSQLを使用した参加登録リポジトリ。
type PostgresSignupRepo struct {
	db *sql.DB
}

// NewPostgresSignupRepo はPostgresSignupRepoを生成する。
func NewPostgresSignupRepo(db *sql.DB) *PostgresSignupRepo {
	return &PostgresSignupRepo{db: db}
}

// Create は参加登録を作成する。
// (account_id, event_id)の一意制約に違反した場合はErrDuplicateを返す。
func (r *PostgresSignupRepo) Create(ctx context.Context, signup *model.Signup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signups (id, account_id, event_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		signup.ID, signup.AccountID, signup.EventID, signup.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert signup: %w", err)
	}
	return nil
}

// FindByAccountAndEvent は指定のアカウントとイベントの組み合わせの参加登録を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresSignupRepo) FindByAccountAndEvent(ctx context.Context, accountID, eventID string) (*model.Signup, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, event_id, created_at
		 FROM signups WHERE account_id = $1 AND event_id = $2`,
		accountID, eventID,
	)
	s := &model.Signup{}
	err := row.Scan(&s.ID, &s.AccountID, &s.EventID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find signup: %w", err)
	}
	return s, nil
}

// DeleteByAccountAndEvent は参加登録を削除し、削除が行われたかどうかを返す。
func (r *PostgresSignupRepo) DeleteByAccountAndEvent(ctx context.Context, accountID, eventID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM signups WHERE account_id = $1 AND event_id = $2`,
		accountID, eventID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete signup: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByEvent は指定イベントの参加登録を登録時刻昇順で、参加者情報付きで返す。
func (r *PostgresSignupRepo) ListByEvent(ctx context.Context, eventID string) ([]SignupWithAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.account_id, s.event_id, s.created_at, a.full_name, a.email
		 FROM signups s
		 JOIN accounts a ON a.id = s.account_id
		 WHERE s.event_id = $1
		 ORDER BY s.created_at`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups by event: %w", err)
	}
	defer rows.Close()

	var signups []SignupWithAccount
	for rows.Next() {
		var sa SignupWithAccount
		err := rows.Scan(
			&sa.Signup.ID, &sa.Signup.AccountID, &sa.Signup.EventID,
			&sa.Signup.CreatedAt, &sa.FullName, &sa.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signup row: %w", err)
		}
		signups = append(signups, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signup rows: %w", err)
	}
	return signups, nil
}

// CountByEvents は指定イベント群それぞれの参加登録数を返す。
// 登録が1件もないイベントIDはマップに含まれない。
func (r *PostgresSignupRepo) CountByEvents(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(eventIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id, COUNT(*) FROM signups
		 WHERE event_id = ANY($1)
		 GROUP BY event_id`,
		pq.Array(eventIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count signups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan signup count row: %w", err)
		}
		counts[eventID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signup count rows: %w", err)
	}
	return counts, nil
}

// compile-time interface check
var _ SignupRepository = (*PostgresSignupRepo)(nil)
