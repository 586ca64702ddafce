package schedule

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sengwoong/lecture-server/internal/shared/apperror"
	"github.com/sengwoong/lecture-server/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("schedule.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("schedule request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetOccurrence(c *gin.Context) {
	courseID := c.Param("id")
	date := c.Param("date")

	resp, err := h.service.ResolveOccurrence(c.Request.Context(), courseID, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GenerateOccurrences(c *gin.Context) {
	courseID := c.Param("id")
	from := c.Query("from")
	to := c.Query("to")

	var skipWeeks []int
	if raw := c.Query("skip_weeks"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			week, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "skip_weeks must be a comma-separated list of week numbers", nil)
				return
			}
			skipWeeks = append(skipWeeks, week)
		}
	}

	resp, err := h.service.BulkGenerate(c.Request.Context(), courseID, from, to, skipWeeks)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CreateException(c *gin.Context) {
	courseID := c.Param("id")
	actorID := c.GetString("user_id")

	var req CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create exception validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.CreateException(c.Request.Context(), actorID, courseID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) DeleteException(c *gin.Context) {
	id := c.Param("id")
	actorID := c.GetString("user_id")

	if err := h.service.DeleteException(c.Request.Context(), actorID, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
