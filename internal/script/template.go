// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具

package script

import "text/template"

// Export names embedded in every script.
const (
	ExportJobID           = "TASK_JOB_ID"
	ExportDefinition      = "TASK_DEFINITION"
	ExportInnerDefinition = "TASK_INNER_DEFINITION"
)

var scriptTemplate = template.Must(template.New("script").Parse(`#!/bin/sh
#
# Generated by recordscheduler, do not edit the export lines.
# Task: {{ .Name }}
#
cd "$(dirname "$0")" || exit 1
export {{ .JobIDName }}={{ .ID }}
export {{ .DefinitionName }}={{ .Definition }}
export {{ .InnerName }}={{ .Inner }}

{{ .Command }}

{{ if .RemoveAfterCompletion -}}
rm -f {{ .File }}
{{- else -}}
mkdir -p completed && mv {{ .File }} completed/
{{- end }}
`))

type scriptData struct {
	Name                  string
	ID                    string
	File                  string
	Definition            string
	Inner                 string
	Command               string
	RemoveAfterCompletion bool
	JobIDName             string
	DefinitionName        string
	InnerName             string
}
