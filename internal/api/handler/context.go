package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/dailymood/mood-tracker/internal/api/middleware"
	"github.com/dailymood/mood-tracker/internal/core/domain"
)

// ctxUserID returns the user injected by the Auth middleware. Its absence
// means the route was mounted without auth, which is reported as 401.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", domain.ErrNotAuthenticated
	}
	return userID, nil
}
