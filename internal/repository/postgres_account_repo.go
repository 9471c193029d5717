package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/commcal/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

const accountColumns = `id, email, full_name, role, auth_uid, avatar_url, pending_activation, created_at, updated_at`

// scanAccount は1行をmodel.Accountに読み込む。
func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	a := &model.Account{}
	err := row.Scan(
		&a.ID, &a.Email, &a.FullName, &a.Role, &a.AuthUID,
		&a.AvatarURL, &a.PendingActivation, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		id,
	)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}
	return account, nil
}

// FindByEmail はメールアドレスの大文字小文字を区別しない一致でアカウントを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`,
		email,
	)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return account, nil
}

// Create はアカウントを作成する。メール重複時はErrDuplicateを返す。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, full_name, role, auth_uid, avatar_url, pending_activation, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.Email, account.FullName, account.Role, account.AuthUID,
		account.AvatarURL, account.PendingActivation, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Update はアカウントの属性を更新する。
func (r *PostgresAccountRepo) Update(ctx context.Context, account *model.Account) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET email = $2, full_name = $3, role = $4, auth_uid = $5, avatar_url = $6,
		     pending_activation = $7, updated_at = $8
		 WHERE id = $1`,
		account.ID, account.Email, account.FullName, account.Role, account.AuthUID,
		account.AvatarURL, account.PendingActivation, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account not found: %s", account.ID)
	}
	return nil
}

// UpdateAvatar はアカウントのアバター画像データを更新する。
func (r *PostgresAccountRepo) UpdateAvatar(ctx context.Context, accountID string, data []byte, mimeType string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET avatar_data = $2, avatar_mime = $3, updated_at = now() WHERE id = $1`,
		accountID, data, mimeType,
	)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// FindAvatar はアカウントのアバター画像データを取得する。
// 未保存の場合はnilデータと空MIMEを返す。
func (r *PostgresAccountRepo) FindAvatar(ctx context.Context, accountID string) ([]byte, string, error) {
	var data []byte
	var mimeType string
	err := r.db.QueryRowContext(ctx,
		`SELECT avatar_data, avatar_mime FROM accounts WHERE id = $1`,
		accountID,
	).Scan(&data, &mimeType)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to find avatar: %w", err)
	}
	return data, mimeType, nil
}

// DeleteByID は指定IDのアカウントを削除する。
// 関連するsignups、feedbacks、sessionsはCASCADE削除される。
func (r *PostgresAccountRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account not found: %s", id)
	}
	return nil
}

// CountByRole は指定ロールのアカウント数を返す。
func (r *PostgresAccountRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE role = $1`,
		role,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts by role: %w", err)
	}
	return count, nil
}

// ListByRole は指定ロールのアカウント一覧を氏名昇順で返す。
func (r *PostgresAccountRepo) ListByRole(ctx context.Context, role model.Role) ([]*model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY full_name`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by role: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListAdminsByEmail は管理者一覧をメールアドレス昇順で返す。
func (r *PostgresAccountRepo) ListAdminsByEmail(ctx context.Context) ([]*model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY email`,
		model.RoleAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListAll は全アカウントをメールアドレス昇順で返す。
func (r *PostgresAccountRepo) ListAll(ctx context.Context) ([]*model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY email`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// collectAccounts は結果セットをアカウントのスライスに読み込む。
func collectAccounts(rows *sql.Rows) ([]*model.Account, error) {
	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return accounts, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
