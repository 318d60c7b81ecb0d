// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package recording

import (
	"strings"
	"time"
)

// EncodingOptions for a capture. Empty fields mean "not specified".
type EncodingOptions struct {
	FileType     string `json:"file_type,omitempty" yaml:"file_type"`
	VideoCodec   string `json:"video_codec,omitempty" yaml:"video_codec"`
	AudioCodec   string `json:"audio_codec,omitempty" yaml:"audio_codec"`
	VideoBitrate string `json:"video_bitrate,omitempty" yaml:"video_bitrate"`
	AudioBitrate string `json:"audio_bitrate,omitempty" yaml:"audio_bitrate"`
	Resolution   string `json:"resolution,omitempty" yaml:"resolution"`
	FrameRate    string `json:"frame_rate,omitempty" yaml:"frame_rate"`
	AspectRatio  string `json:"aspect_ratio,omitempty" yaml:"aspect_ratio"`
	OutputFormat string `json:"output_format,omitempty" yaml:"output_format"`
}

// Merge fills the empty fields of o from defaults.
func (o EncodingOptions) Merge(defaults EncodingOptions) EncodingOptions {
	fill := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	fill(&o.FileType, defaults.FileType)
	fill(&o.VideoCodec, defaults.VideoCodec)
	fill(&o.AudioCodec, defaults.AudioCodec)
	fill(&o.VideoBitrate, defaults.VideoBitrate)
	fill(&o.AudioBitrate, defaults.AudioBitrate)
	fill(&o.Resolution, defaults.Resolution)
	fill(&o.FrameRate, defaults.FrameRate)
	fill(&o.AspectRatio, defaults.AspectRatio)
	fill(&o.OutputFormat, defaults.OutputFormat)
	return o
}

// Container is the output format, falling back to the file type.
// Empty when neither is set.
func (o EncodingOptions) Container() string {
	if f := strings.TrimSpace(o.OutputFormat); f != "" {
		return f
	}
	return strings.TrimSpace(o.FileType)
}

// Recording is a request to capture a channel for a time window.
type Recording struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	OutputPath  string           `json:"output_path"`
	ChannelID   string           `json:"channel_id"`
	ChannelName string           `json:"channel_name"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Encoding    *EncodingOptions `json:"encoding,omitempty"`
}

// DurationSeconds is the window length in whole seconds.
func (r Recording) DurationSeconds() int {
	return int(r.End.Sub(r.Start) / time.Second)
}
