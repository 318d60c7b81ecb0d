// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZSC714725/recordscheduler/internal/recording"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Storage   StorageConfig             `yaml:"storage"`
	Scheduler SchedulerConfig           `yaml:"scheduler"`
	FFmpeg    FFmpegConfig              `yaml:"ffmpeg"`
	Encoding  recording.EncodingOptions `yaml:"encoding"`
	Log       LogConfig                 `yaml:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Bind string `yaml:"bind"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DataRoot        string `yaml:"data_root"`
	ScriptExtension string `yaml:"script_extension"`
}

// SchedulerConfig at 队列配置
type SchedulerConfig struct {
	At                    string        `yaml:"at"`
	Atq                   string        `yaml:"atq"`
	Atrm                  string        `yaml:"atrm"`
	Shell                 string        `yaml:"shell"`
	CommandTimeout        time.Duration `yaml:"command_timeout"`
	RemoveAfterCompletion bool          `yaml:"remove_after_completion"`
	Timezone              string        `yaml:"timezone"`
}

// Location resolves Timezone; empty means local time.
func (s SchedulerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler.timezone: %w", err)
	}
	return loc, nil
}

// FFmpegConfig FFmpeg 配置
type FFmpegConfig struct {
	Path          string   `yaml:"path"`
	DefaultFormat string   `yaml:"default_format"`
	InputAllow    []string `yaml:"input_allow"`
	InputBlock    []string `yaml:"input_block"`
	OutputAllow   []string `yaml:"output_allow"`
	OutputBlock   []string `yaml:"output_block"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	setDefault(&c.Server.Bind, ":8080")
	setDefault(&c.Storage.DataRoot, "data")
	setDefault(&c.Storage.ScriptExtension, "sh")
	setDefault(&c.Scheduler.At, "at")
	setDefault(&c.Scheduler.Atq, "atq")
	setDefault(&c.Scheduler.Atrm, "atrm")
	setDefault(&c.Scheduler.Shell, "/bin/sh")
	setDefault(&c.FFmpeg.Path, "ffmpeg")
	setDefault(&c.FFmpeg.DefaultFormat, "mp4")
	setDefault(&c.Log.Level, "info")
	if c.Scheduler.CommandTimeout <= 0 {
		c.Scheduler.CommandTimeout = 10 * time.Second
	}
}

func setDefault(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

// Load 从 YAML 文件加载配置，文件不存在时返回默认配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML and fills empty values with defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if _, err := cfg.Scheduler.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overrides are command line values that take precedence over the file.
type Overrides struct {
	Bind     string
	DataRoot string
}

// Apply returns a copy of c with the non-empty overrides set. c itself is
// left as loaded so a Watcher keeps comparing against the file.
func (o Overrides) Apply(c *Config) *Config {
	out := *c
	if o.Bind != "" {
		out.Server.Bind = o.Bind
	}
	if o.DataRoot != "" {
		out.Storage.DataRoot = o.DataRoot
	}
	return &out
}
