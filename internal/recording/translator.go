// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package recording

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/shortuuid/v4"

	"github.com/ZSC714725/recordscheduler/internal/ffmpeg"
	"github.com/ZSC714725/recordscheduler/internal/task"
)

// Translator converts recordings to schedulable tasks and back.
type Translator struct {
	Builder ffmpeg.Builder
}

// ToTask renders the capture command for rec and embeds rec as the inner payload.
// The stored recording carries the effective options.
func (tr Translator) ToTask(rec Recording, opts EncodingOptions) (task.Task, error) {
	if rec.ID == "" {
		rec.ID = shortuuid.New()
	}
	rec.Encoding = &opts

	inner, err := json.Marshal(rec)
	if err != nil {
		return task.Task{}, fmt.Errorf("encode recording %s: %w", rec.ID, err)
	}

	cmd := tr.Builder.Command(ffmpeg.Capture{
		Source:       rec.ChannelID,
		Duration:     rec.DurationSeconds(),
		VideoCodec:   opts.VideoCodec,
		AudioCodec:   opts.AudioCodec,
		VideoBitrate: opts.VideoBitrate,
		AudioBitrate: opts.AudioBitrate,
		Resolution:   opts.Resolution,
		FrameRate:    opts.FrameRate,
		AspectRatio:  opts.AspectRatio,
		Format:       opts.Container(),
		Title:        rec.Name,
		Description:  rec.Description,
		Output:       rec.OutputPath,
	})

	return task.New(rec.Name, cmd, rec.Start, string(inner)), nil
}

// FromTask decodes the recording embedded in t. A task without a
// recoverable payload is invalid.
func (tr Translator) FromTask(t task.Task) (Recording, error) {
	op := "task " + t.ID
	if strings.TrimSpace(t.Inner) == "" {
		return Recording{}, task.Parsef(op, "empty recording payload")
	}

	var rec *Recording
	if err := json.Unmarshal([]byte(t.Inner), &rec); err != nil {
		return Recording{}, &task.ParseError{Op: op, Detail: "decode recording", Err: err}
	}
	if rec == nil {
		return Recording{}, task.Parsef(op, "recording payload is null")
	}
	return *rec, nil
}
