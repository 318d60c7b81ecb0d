// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package config

import "reflect"

// Kind names a settings category.
type Kind string

const (
	KindServer    Kind = "server"
	KindStorage   Kind = "storage"
	KindScheduler Kind = "scheduler"
	KindFFmpeg    Kind = "ffmpeg"
	KindEncoding  Kind = "encoding"
	KindLog       Kind = "log"
)

// Change reports that one category differs in Config.
// Consumers switch on Kind and read the matching section of Config.
type Change struct {
	Kind   Kind
	Config *Config
}

// Diff lists the categories that differ between old and next.
func Diff(old, next *Config) []Change {
	if old == nil {
		old = &Config{}
	}
	sections := []struct {
		kind      Kind
		old, next any
	}{
		{KindServer, old.Server, next.Server},
		{KindStorage, old.Storage, next.Storage},
		{KindScheduler, old.Scheduler, next.Scheduler},
		{KindFFmpeg, old.FFmpeg, next.FFmpeg},
		{KindEncoding, old.Encoding, next.Encoding},
		{KindLog, old.Log, next.Log},
	}

	var changes []Change
	for _, s := range sections {
		if !reflect.DeepEqual(s.old, s.next) {
			changes = append(changes, Change{Kind: s.kind, Config: next})
		}
	}
	return changes
}
