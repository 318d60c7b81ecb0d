// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ZSC714725/recordscheduler/internal/command"
	"github.com/ZSC714725/recordscheduler/internal/ffmpeg"
	"github.com/ZSC714725/recordscheduler/internal/queue"
	"github.com/ZSC714725/recordscheduler/internal/recording"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

const maxDefinitionSize = 1 << 20

// TaskScheduler is implemented by *scheduler.Scheduler
type TaskScheduler interface {
	ScheduleTask(ctx context.Context, t task.Task) (int, error)
	Jobs(ctx context.Context) ([]queue.JobTask, error)
	FetchScheduledTasks(ctx context.Context) ([]task.Task, error)
	CancelTask(ctx context.Context, id string) error
	GetTaskDefinition(ctx context.Context, id string) (string, error)
	UpdateTaskDefinition(ctx context.Context, id, text string) error
}

// Config for the handler
type Config struct {
	Scheduler  TaskScheduler
	Translator recording.Translator
	Inputs     ffmpeg.Validator
	Outputs    ffmpeg.Validator
	Defaults   recording.EncodingOptions
	Logger     zerolog.Logger
}

// Handler holds dependencies
type Handler struct {
	scheduler  TaskScheduler
	translator recording.Translator
	inputs     ffmpeg.Validator
	outputs    ffmpeg.Validator
	defaults   atomic.Pointer[recording.EncodingOptions]
	logger     zerolog.Logger
}

// NewHandler creates API handler
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		scheduler:  cfg.Scheduler,
		translator: cfg.Translator,
		inputs:     cfg.Inputs,
		outputs:    cfg.Outputs,
		logger:     cfg.Logger,
	}
	if h.inputs == nil {
		h.inputs, _ = ffmpeg.NewValidator(nil, nil)
	}
	if h.outputs == nil {
		h.outputs, _ = ffmpeg.NewValidator(nil, nil)
	}
	h.SetDefaults(cfg.Defaults)
	return h
}

// SetDefaults replaces the encoding defaults merged into new recordings.
func (h *Handler) SetDefaults(opts recording.EncodingOptions) {
	h.defaults.Store(&opts)
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/recordings", h.ScheduleRecording)
	r.GET("/recordings", h.ListRecordings)
	r.GET("/tasks", h.ListTasks)
	r.DELETE("/tasks/:id", h.CancelTask)
	r.GET("/tasks/:id/definition", h.GetDefinition)
	r.PUT("/tasks/:id/definition", h.UpdateDefinition)
}

func errResp(c *gin.Context, code int, msg, detail string) {
	c.JSON(code, ErrorResponse{Code: code, Message: msg, Detail: detail})
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, task.ErrInvalidTask):
		code = http.StatusBadRequest
	case errors.Is(err, task.ErrParse):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, command.ErrExternalProcess):
		code = http.StatusBadGateway
	}
	if code >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg(msg)
	}
	errResp(c, code, msg, err.Error())
}

// ScheduleRecording POST /recordings
func (h *Handler) ScheduleRecording(c *gin.Context) {
	var req RecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if !req.End.After(req.Start) {
		errResp(c, http.StatusBadRequest, "End must be after start", "")
		return
	}
	if err := h.inputs.Check(req.ChannelID); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid address", "channel_id: "+err.Error())
		return
	}
	if err := h.outputs.Check(req.OutputPath); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid address", "output_path: "+err.Error())
		return
	}

	rec := recording.Recording{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		OutputPath:  req.OutputPath,
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
		Start:       req.Start,
		End:         req.End,
	}
	var opts recording.EncodingOptions
	if req.Encoding != nil {
		opts = *req.Encoding
	}
	opts = opts.Merge(*h.defaults.Load())

	t, err := h.translator.ToTask(rec, opts)
	if err != nil {
		h.fail(c, "Translate failed", err)
		return
	}

	jobID, err := h.scheduler.ScheduleTask(c.Request.Context(), t)
	if err != nil {
		h.fail(c, "Schedule failed", err)
		return
	}

	c.JSON(http.StatusOK, ScheduleResponse{JobID: jobID, Task: t})
}

// ListRecordings GET /recordings
func (h *Handler) ListRecordings(c *gin.Context) {
	jobs, err := h.scheduler.Jobs(c.Request.Context())
	if err != nil {
		h.fail(c, "List failed", err)
		return
	}

	out := make([]ScheduledRecording, 0, len(jobs))
	for _, jt := range jobs {
		item := ScheduledRecording{JobID: jt.JobID, TaskID: jt.Task.ID, Command: jt.Task.Command}
		rec, err := h.translator.FromTask(jt.Task)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Recording = &rec
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

// ListTasks GET /tasks
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.scheduler.FetchScheduledTasks(c.Request.Context())
	if err != nil {
		h.fail(c, "List failed", err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// CancelTask DELETE /tasks/:id
func (h *Handler) CancelTask(c *gin.Context) {
	if err := h.scheduler.CancelTask(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "Cancel failed", err)
		return
	}
	c.JSON(http.StatusOK, "OK")
}

// GetDefinition GET /tasks/:id/definition
func (h *Handler) GetDefinition(c *gin.Context) {
	text, err := h.scheduler.GetTaskDefinition(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Unknown task", err)
		return
	}
	c.String(http.StatusOK, text)
}

// UpdateDefinition PUT /tasks/:id/definition
func (h *Handler) UpdateDefinition(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxDefinitionSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errResp(c, http.StatusRequestEntityTooLarge, "Definition too large", fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
			return
		}
		errResp(c, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if len(body) == 0 {
		errResp(c, http.StatusBadRequest, "Empty definition", "")
		return
	}

	if err := h.scheduler.UpdateTaskDefinition(c.Request.Context(), c.Param("id"), string(body)); err != nil {
		h.fail(c, "Update failed", err)
		return
	}
	c.JSON(http.StatusOK, "OK")
}
