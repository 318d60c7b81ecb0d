// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// RecordScheduler - 定时录制任务调度工具
//
// Package metrics holds the Prometheus collectors of the scheduler.
// Labels stay low-cardinality: command names and outcomes, never task ids.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command outcomes
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

var (
	// CommandsTotal counts at/atq/atrm invocations by command and outcome.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordscheduler_commands_total",
		Help: "Total number of queue command invocations, by command and outcome.",
	}, []string{"command", "outcome"})

	// TasksScheduledTotal counts submissions by outcome.
	TasksScheduledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordscheduler_tasks_scheduled_total",
		Help: "Total number of task submissions, by outcome.",
	}, []string{"outcome"})

	// TasksCancelledTotal counts cancelled tasks.
	TasksCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recordscheduler_tasks_cancelled_total",
		Help: "Total number of cancelled tasks.",
	})

	// ForeignJobsSkippedTotal counts queued jobs without a task id.
	ForeignJobsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recordscheduler_foreign_jobs_skipped_total",
		Help: "Total number of queued jobs skipped because they carry no task id.",
	})

	// LostScriptsTotal counts queued jobs whose script was missing.
	LostScriptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recordscheduler_lost_scripts_total",
		Help: "Total number of queued jobs found without their script.",
	})

	// QueuedTasks is the number of live tasks seen by the last full listing.
	QueuedTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recordscheduler_queued_tasks",
		Help: "Number of live tasks found in the queue by the last full listing.",
	})
)

// Outcome maps an error to OutcomeOK or OutcomeFailed.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeOK
}
