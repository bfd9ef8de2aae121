package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulerPassesTotal counts eligibility passes by outcome (ok/error).
	SchedulerPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sp_scheduler_passes_total",
			Help: "Total number of recurring-task scheduler passes by outcome",
		},
		[]string{"outcome"},
	)

	RepeatTasksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sp_repeat_tasks_created_total",
			Help: "Total number of task instances spawned from repeat configs",
		},
	)

	RepeatTasksArchivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sp_repeat_tasks_archived_total",
			Help: "Total number of same-day duplicate instances moved to the archive",
		},
	)

	OrphanTasksDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sp_orphan_tasks_detected_total",
			Help: "Total number of tasks found listed in a context that does not own them",
		},
	)

	OrphanTasksUnlistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sp_orphan_tasks_unlisted_total",
			Help: "Total number of orphaned task ids removed from context lists after confirmation",
		},
	)

	PersistenceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sp_persistence_errors_total",
			Help: "Total number of snapshot save/load failures by kind",
		},
		[]string{"kind"},
	)
)

func RecordPass(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	SchedulerPassesTotal.WithLabelValues(outcome).Inc()
}

func RecordPersistenceError(kind string) {
	PersistenceErrorsTotal.WithLabelValues(kind).Inc()
}
