// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/ZSC714725/recordscheduler/internal/shell"
)

// DefaultFormat is the container used when neither output format nor file type is set.
const DefaultFormat = "mp4"

// Capture describes one recording run. Empty encoding fields let ffmpeg
// pick its defaults, except the codecs which fall back to stream copy.
type Capture struct {
	Source       string
	Duration     int
	VideoCodec   string
	AudioCodec   string
	VideoBitrate string
	AudioBitrate string
	Resolution   string
	FrameRate    string
	AspectRatio  string
	Format       string
	Title        string
	Description  string
	Output       string
}

// Builder renders capture command lines.
type Builder struct {
	Binary        string
	DefaultFormat string
}

// Command returns the shell command line for c.
func (b Builder) Command(c Capture) string {
	binary := b.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := []string{shell.Arg(binary), "-i", shell.Arg(c.Source), "-t", strconv.Itoa(c.Duration)}
	cmd = append(cmd, "-c:v", shell.Arg(orDefault(c.VideoCodec, "copy")))
	cmd = append(cmd, "-c:a", shell.Arg(orDefault(c.AudioCodec, "copy")))
	cmd = appendOpt(cmd, "-b:v", c.VideoBitrate)
	cmd = appendOpt(cmd, "-b:a", c.AudioBitrate)
	cmd = appendOpt(cmd, "-s", c.Resolution)
	cmd = appendOpt(cmd, "-r", c.FrameRate)
	cmd = appendOpt(cmd, "-aspect", c.AspectRatio)
	cmd = append(cmd, "-f", shell.Arg(orDefault(c.Format, orDefault(b.DefaultFormat, DefaultFormat))))
	cmd = append(cmd, "-metadata", "title="+shell.DoubleQuote(c.Title))
	cmd = append(cmd, "-metadata", "description="+shell.DoubleQuote(c.Description))
	cmd = append(cmd, shell.Arg(c.Output))

	return strings.Join(cmd, " ")
}

func appendOpt(cmd []string, flag, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return cmd
	}
	return append(cmd, flag, shell.Arg(value))
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
