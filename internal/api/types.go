// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package api

import (
	"time"

	"github.com/ZSC714725/recordscheduler/internal/recording"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

// RecordingRequest for POST /recordings
type RecordingRequest struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name" binding:"required"`
	Description string                     `json:"description"`
	OutputPath  string                     `json:"output_path" binding:"required"`
	ChannelID   string                     `json:"channel_id" binding:"required"`
	ChannelName string                     `json:"channel_name"`
	Start       time.Time                  `json:"start" binding:"required"`
	End         time.Time                  `json:"end" binding:"required"`
	Encoding    *recording.EncodingOptions `json:"encoding"`
}

// ScheduledRecording is a live job decoded back into its recording
type ScheduledRecording struct {
	JobID     int                  `json:"job_id"`
	TaskID    string               `json:"task_id"`
	Command   string               `json:"command"`
	Recording *recording.Recording `json:"recording,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// ScheduleResponse for POST /recordings
type ScheduleResponse struct {
	JobID int       `json:"job_id"`
	Task  task.Task `json:"task"`
}

// ErrorResponse for API errors
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
