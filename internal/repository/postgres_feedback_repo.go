package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/commcal/internal/model"
)

// PostgresFeedbackRepo はPostgreSQLを使用したフィードバックリポジトリ。
type PostgresFeedbackRepo struct {
	db *sql.DB
}

// NewPostgresFeedbackRepo はPostgresFeedbackRepoを生成する。
func NewPostgresFeedbackRepo(db *sql.DB) *PostgresFeedbackRepo {
	return &PostgresFeedbackRepo{db: db}
}

// FindByAccountAndEvent は指定のアカウントとイベントの組み合わせのフィードバックを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresFeedbackRepo) FindByAccountAndEvent(ctx context.Context, accountID, eventID string) (*model.Feedback, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, event_id, comments, submitted_at, created_at, updated_at
		 FROM feedbacks WHERE account_id = $1 AND event_id = $2`,
		accountID, eventID,
	)
	fb := &model.Feedback{}
	err := row.Scan(
		&fb.ID, &fb.AccountID, &fb.EventID, &fb.Comments,
		&fb.SubmittedAt, &fb.CreatedAt, &fb.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback: %w", err)
	}
	return fb, nil
}

// Upsert はフィードバックを挿入または更新する。
// 同一の(account_id, event_id)の行が既に存在する場合は本文と提出時刻を上書きし、
// 既存の行のID・作成時刻は保持される。保存後の行を返す。
func (r *PostgresFeedbackRepo) Upsert(ctx context.Context, fb *model.Feedback) (*model.Feedback, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO feedbacks (id, account_id, event_id, comments, submitted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT ON CONSTRAINT feedbacks_account_event_key DO UPDATE
		 SET comments = EXCLUDED.comments,
		     submitted_at = EXCLUDED.submitted_at,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, account_id, event_id, comments, submitted_at, created_at, updated_at`,
		fb.ID, fb.AccountID, fb.EventID, fb.Comments,
		fb.SubmittedAt, fb.CreatedAt, fb.UpdatedAt,
	)

	stored := &model.Feedback{}
	err := row.Scan(
		&stored.ID, &stored.AccountID, &stored.EventID, &stored.Comments,
		&stored.SubmittedAt, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert feedback: %w", err)
	}
	return stored, nil
}

// ListByEvent は指定イベントのフィードバックを提出時刻降順で、作者情報付きで返す。
func (r *PostgresFeedbackRepo) ListByEvent(ctx context.Context, eventID string) ([]FeedbackWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT f.id, f.account_id, f.event_id, f.comments, f.submitted_at, f.created_at, f.updated_at,
		        a.full_name, a.email
		 FROM feedbacks f
		 JOIN accounts a ON a.id = f.account_id
		 WHERE f.event_id = $1
		 ORDER BY f.submitted_at DESC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedbacks by event: %w", err)
	}
	defer rows.Close()

	var feedbacks []FeedbackWithAuthor
	for rows.Next() {
		var fa FeedbackWithAuthor
		err := rows.Scan(
			&fa.Feedback.ID, &fa.Feedback.AccountID, &fa.Feedback.EventID,
			&fa.Feedback.Comments, &fa.Feedback.SubmittedAt,
			&fa.Feedback.CreatedAt, &fa.Feedback.UpdatedAt,
			&fa.AuthorName, &fa.AuthorEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		feedbacks = append(feedbacks, fa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback rows: %w", err)
	}
	return feedbacks, nil
}

// compile-time interface check
var _ FeedbackRepository = (*PostgresFeedbackRepo)(nil)
