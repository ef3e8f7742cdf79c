package handlers

import (
	"log/slog"
	"net/http"

	"tzu-threatmodel/internal/aggregate"
	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/risk"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// V: общий валидатор входных DTO.
var V = validator.New()

// status подбирает HTTP-код по ошибке слоя данных или агрегата.
func status(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr),
		errors.Is(err, dto.ErrInvalidPayload),
		errors.Is(err, database.ErrInvalidID),
		errors.Is(err, risk.ErrInvalidFactorName):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrNoThreatsUpdated),
		errors.Is(err, aggregate.ErrThreatNotFound):
		return http.StatusNotFound
	case errors.Is(err, aggregate.ErrSaveInProgress),
		errors.Is(err, aggregate.ErrDuplicateThreat):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail отвечает {"detail": ...}; внутренние ошибки не раскрываем.
func fail(c *gin.Context, err error) {
	code := status(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "err", err)
		detail = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, dto.ErrorResponse{Detail: detail})
}

func badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Detail: detail})
}

// bindObject читает тело как JSON-объект (для частичных обновлений).
func bindObject(c *gin.Context) (map[string]any, bool) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		badRequest(c, "request body must be a JSON object")
		return nil, false
	}
	return raw, true
}

// bindValid читает JSON в структуру и проверяет её теги validate.
func bindValid(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid JSON body")
		return false
	}
	if err := V.Struct(dst); err != nil {
		fail(c, err)
		return false
	}
	return true
}
