package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/commcal/internal/model"
)

// AccountFinder は管理者判定に必要なインターフェース。
// repository.AccountRepositoryの部分集合として定義する。
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

// NewRequireAdminMiddleware は管理者ロールを要求するミドルウェアを返す。
// SessionMiddlewareの後に配置すること。管理者以外には403 Forbiddenを返す。
func NewRequireAdminMiddleware(accountFinder AccountFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := AccountIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			account, err := accountFinder.FindByID(r.Context(), accountID)
			if err != nil {
				slog.Error("failed to find account for admin check",
					slog.String("account_id", accountID),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if account == nil || !account.IsAdmin() {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
