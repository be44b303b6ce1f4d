package handlers

import (
	"bytes"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/middleware"
	"taskmanager/internal/models"
	"taskmanager/internal/pdf"
	"taskmanager/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	reports pdf.Generator
}

func NewTaskHandler(service services.TaskService, reports pdf.Generator) *TaskHandler {
	return &TaskHandler{service: service, reports: reports}
}

// Create godoc
// @Summary      Create a task
// @Description  Status defaults to TODO. HIGH priority tasks need a due date.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      models.TaskInput  true  "Task fields"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req models.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task", "create", "invalid request body", err)
		return
	}
	log.Printf("[task][create] rid=%s title=%q priority=%q status=%q", middleware.GetRequestID(c), req.Title, req.Priority, req.Status)

	task, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "task", "create", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetAll godoc
// @Summary      List tasks
// @Description  Criteria are ANDed; q matches title or description, case-insensitive.
// @Tags         Tasks
// @Produce      json
// @Param        status    query     string  false  "TODO | IN_PROGRESS | DONE"
// @Param        priority  query     string  false  "LOW | MEDIUM | HIGH"
// @Param        q         query     string  false  "Search text"
// @Success      200       {array}   models.Task
// @Failure      400       {object}  ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	var filter models.TaskFilter
	if v, ok := c.GetQuery("status"); ok && v != "" {
		st := models.TaskStatus(strings.ToUpper(v))
		if !st.Valid() {
			badRequest(c, "task", "list", "invalid status filter", nil)
			return
		}
		filter.Status = &st
	}
	if v, ok := c.GetQuery("priority"); ok && v != "" {
		p := models.TaskPriority(strings.ToUpper(v))
		if !p.Valid() {
			badRequest(c, "task", "list", "invalid priority filter", nil)
			return
		}
		filter.Priority = &p
	}
	if v, ok := c.GetQuery("q"); ok {
		q := v
		filter.Search = &q
	}

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "task", "list", err)
		return
	}
	log.Printf("[task][list][ok] rid=%s count=%d", middleware.GetRequestID(c), len(tasks))
	c.JSON(http.StatusOK, tasks)
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "task", "get")
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "task", "get", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary      Replace a task
// @Description  Every field is overwritten; omitted ones are cleared and status falls back to TODO.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Task ID"
// @Param        task  body      models.TaskInput  true  "Task fields"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "task", "update")
	if !ok {
		return
	}
	var req models.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task", "update", "invalid request body", err)
		return
	}

	task, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "task", "update", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ChangeStatus godoc
// @Summary      Change task status
// @Description  Completing a task whose due date has passed is rejected.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id      path      int                  true  "Task ID"
// @Param        status  body      models.StatusUpdate  true  "New status"
// @Success      200     {object}  models.Task
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /api/tasks/{id}/status [patch]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c, "task", "status")
	if !ok {
		return
	}
	var body models.StatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "task", "status", "invalid request body", err)
		return
	}

	task, err := h.service.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondError(c, "task", "status", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "task", "delete")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "task", "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats godoc
// @Summary      Task statistics
// @Tags         Stats
// @Produce      json
// @Success      200  {object}  models.TaskStats
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "task", "stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StatsReport godoc
// @Summary      Task statistics as PDF
// @Tags         Stats
// @Produce      application/pdf
// @Success      200  {file}    file
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks/stats/report [get]
func (h *TaskHandler) StatsReport(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "task", "report", err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.GenerateStatsReport(&buf, pdf.StatsReportData{Stats: stats, GeneratedAt: time.Now()}); err != nil {
		respondError(c, "task", "report", err)
		return
	}
	log.Printf("[task][report][ok] rid=%s bytes=%d", middleware.GetRequestID(c), buf.Len())
	c.Header("Content-Disposition", `attachment; filename="task-stats.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
