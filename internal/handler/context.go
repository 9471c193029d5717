package handler

import (
	"net/http"

	"github.com/hitoshi/commcal/internal/middleware"
)

// accountIDFrom はリクエストコンテキストから認証済みアカウントIDを取り出す。
func accountIDFrom(r *http.Request) (string, error) {
	return middleware.AccountIDFromContext(r.Context())
}
