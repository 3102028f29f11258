package handlers

import (
	"errors"
	"net/http"

	"fieldservice/services/scheduling"
	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var kindStatus = map[scheduling.Kind]int{
	scheduling.KindInvalidDate:         http.StatusBadRequest,
	scheduling.KindInvalidRange:        http.StatusBadRequest,
	scheduling.KindMissingField:        http.StatusBadRequest,
	scheduling.KindInvalidPolicy:       http.StatusBadRequest,
	scheduling.KindInvalidSlot:         http.StatusBadRequest,
	scheduling.KindNotFound:            http.StatusNotFound,
	scheduling.KindSlotUnavailable:     http.StatusConflict,
	scheduling.KindUpstreamUnavailable: http.StatusInternalServerError,
	scheduling.KindUnauthorized:        http.StatusUnauthorized,
}

// respondError maps a service error onto its HTTP status and the standard error body.
// Only upstream failures expose their cause in details.
func respondError(c *gin.Context, op string, err error, fields ...zap.Field) {
	logger := utils.ContextLogger(c).With(append(fields, zap.String("op", op))...)

	var se *scheduling.Error
	if !errors.As(err, &se) {
		logger.Error("unexpected error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	status, ok := kindStatus[se.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	details := ""
	if status >= http.StatusInternalServerError {
		logger.Error(se.Message, zap.String("kind", string(se.Kind)), zap.Error(se.Err))
		details = se.Details()
	} else {
		logger.Info(se.Message, zap.String("kind", string(se.Kind)))
	}
	utils.JSONError(c, status, se.Message, details)
}
