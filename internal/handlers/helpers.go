package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/middleware"
	"taskmanager/internal/services"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, area, op string, err error) {
	rid := middleware.GetRequestID(c)

	var verr *services.ValidationError
	var bre *services.BusinessRuleError
	switch {
	case errors.As(err, &verr):
		log.Printf("[%s][%s][400] rid=%s %v", area, op, rid, err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &bre):
		log.Printf("[%s][%s][409] rid=%s %v", area, op, rid, err)
		c.JSON(http.StatusConflict, ErrorResponse{Error: "business rule violation", Message: bre.Message})
	case errors.Is(err, services.ErrTaskNotFound):
		log.Printf("[%s][%s][404] rid=%s %v", area, op, rid, err)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		log.Printf("[%s][%s][err] rid=%s %v", area, op, rid, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func badRequest(c *gin.Context, area, op, msg string, err error) {
	log.Printf("[%s][%s][400] rid=%s %s: %v", area, op, middleware.GetRequestID(c), msg, err)
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// parseID reads the :id path parameter; on failure it has already answered 400.
func parseID(c *gin.Context, area, op string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, area, op, "invalid id", err)
		return 0, false
	}
	return id, true
}
