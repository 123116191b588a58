package middleware

import (
	"net/http"

	"rewards/internal/repository"

	"github.com/labstack/echo/v4"
)

// AuthJWTの後ろに置く
// DBのtoken_versionとtvが食い違えば401（削除・ロール変更・強制ログアウト）
// 通ればroleはDBの値で上書き
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, idOK := c.Get(CtxUserIDKey).(int64)
			tv, tvOK := c.Get(CtxTokenVersionKey).(int)
			if !idOK || !tvOK || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
