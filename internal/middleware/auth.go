package middleware

import (
	"net/http"

	"ninepay-gateway/internal/auth"
	"ninepay-gateway/internal/logger"
	"ninepay-gateway/internal/utils"

	"go.uber.org/zap"
)

// RequireAuth rejects requests without a valid HS256 access token signed
// with secret. The caller is stored on the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				utils.WriteJSONError(w, "missing access token", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseAccessToken(tokenStr, secret)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("Access token rejected", zap.Error(err))
				utils.WriteJSONError(w, "invalid access token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetMerchantContext(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
