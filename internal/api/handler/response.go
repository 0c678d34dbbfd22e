package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

// Response is the envelope every facade route answers with. It mirrors
// service.Result so the shell can treat local and remote outcomes alike.
type Response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Notice  string              `json:"notice,omitempty"`
}

// reply renders r. Failures are handed to the HTTP error handler; a refused
// operation (Notice without Err) answers 409 with the notice.
func reply[T any](c echo.Context, status int, r service.Result[T]) error {
	if r.Err != nil {
		return r.Err
	}
	if !r.Success {
		return c.JSON(http.StatusConflict, Response{Notice: r.Notice})
	}
	return c.JSON(status, Response{Success: true, Data: r.Data, Notice: r.Notice})
}

func replyData(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}
