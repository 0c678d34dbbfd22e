package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// ctxSession is the key under which middleware.RequireSession stores the session.
const ctxSession = "session"

// ctxIdentity returns the identity injected by RequireSession. A missing
// value means the route was registered without the middleware.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	sess, _ := c.Get(ctxSession).(*domain.Session)
	if sess == nil {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess.Identity, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// bindBody decodes the JSON body into dst. Validation is left to the stores
// so the same rules apply to every caller.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}

func bindQuery(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	return nil
}
