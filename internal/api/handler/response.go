package handler

import (
	"github.com/labstack/echo/v4"
)

const fallbackMessage = "using fallback data"

// envelope is the success response shape of every JSON endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func respondList[T any](c echo.Context, status int, items []T, fallback bool) error {
	n := len(items)
	env := envelope{Success: true, Data: items, Count: &n}
	if fallback {
		env.Message = fallbackMessage
	}
	return c.JSON(status, env)
}
