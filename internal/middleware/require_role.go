package middleware

import (
	"net/http"

	"github.com/auravtc/backend/internal/model"
)

// NewRequireRoleMiddleware は認証済みユーザーのロールが指定された集合に
// 含まれることを要求するミドルウェアを返す。
// ロールは階層ではなく集合として判定する。含まれない場合は403を返す。
// セッションミドルウェアの後段に配置すること。
func NewRequireRoleMiddleware(roles ...model.Role) func(next http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
