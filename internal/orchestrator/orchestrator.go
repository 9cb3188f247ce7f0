// Package orchestrator drives one backup-and-prune run across all labeled
// VMs. VMs are processed sequentially and independently: a failure while
// backing up or pruning one VM is logged and counted but never aborts the
// rest of the run.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/jaevans/harvester-auto-backup/internal/cluster"
	"github.com/jaevans/harvester-auto-backup/internal/metrics"
	"github.com/jaevans/harvester-auto-backup/internal/retention"
	"github.com/jaevans/harvester-auto-backup/internal/sorting"
)

// Summary aggregates counters across a whole run. In dry-run mode the created
// and deleted counters report the planned actions instead.
type Summary struct {
	VMsMatched       int
	VMsProcessed     int
	BackupsCreated   int
	BackupsEvaluated int
	BackupsDeleted   int
	CreateFailures   int
	ListFailures     int
	DeleteFailures   int
}

// Runner holds the wiring and configuration for one run.
type Runner struct {
	Cluster cluster.Interface
	Clock   clock.PassiveClock
	Log     logr.Logger

	Label     string
	Namespace string
	DryRun    bool

	WeeklyOffset  retention.Period
	MonthlyOffset retention.Period
	DeleteOffset  retention.Period
}

// Run executes the whole workflow. The returned error is fatal: either the
// thresholds are misconfigured (checked before any cluster call) or the
// initial VM discovery failed. Everything after discovery is best effort.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var s Summary

	now := r.Clock.Now().UTC()
	thresholds := retention.NewThresholds(now, r.WeeklyOffset, r.MonthlyOffset, r.DeleteOffset)
	if err := thresholds.Validate(now); err != nil {
		return s, fmt.Errorf("invalid retention thresholds: %w", err)
	}
	r.Log.V(1).Info("retention thresholds",
		"weekly", thresholds.Weekly.Format(time.RFC3339),
		"monthly", thresholds.Monthly.Format(time.RFC3339),
		"delete", thresholds.Delete.Format(time.RFC3339),
		"dryRun", r.DryRun)

	vms, err := r.Cluster.ListVMs(ctx, r.Namespace, r.Label)
	if err != nil {
		return s, fmt.Errorf("failed to discover virtual machines: %w", err)
	}
	s.VMsMatched = len(vms)
	if len(vms) == 0 {
		r.Log.Info("no matching virtual machines", "label", r.Label)
		return s, nil
	}
	sorting.ByNamespacedName[cluster.VirtualMachine, *cluster.VirtualMachine](vms)

	for _, vm := range vms {
		r.processVM(ctx, vm, thresholds, &s)
	}

	r.Log.Info("run complete",
		"vmsMatched", s.VMsMatched,
		"vmsProcessed", s.VMsProcessed,
		"backupsCreated", s.BackupsCreated,
		"backupsEvaluated", s.BackupsEvaluated,
		"backupsDeleted", s.BackupsDeleted,
		"createFailures", s.CreateFailures,
		"listFailures", s.ListFailures,
		"deleteFailures", s.DeleteFailures,
		"dryRun", r.DryRun)
	return s, nil
}

func (r *Runner) processVM(ctx context.Context, vm cluster.VirtualMachine, thresholds retention.Thresholds, s *Summary) {
	log := r.Log.WithValues("vm", vm.String())

	name := BackupName(vm.Name, r.Clock.Now())
	if r.DryRun {
		log.Info("dry run: would create backup", "backup", name)
		s.BackupsCreated++
	} else if err := r.Cluster.CreateBackup(ctx, vm.Namespace, vm.Name, name); err != nil {
		// Skip retention for this VM only; the next scheduled run will prune
		// whatever this one could not.
		log.Error(err, "backup creation failed, skipping retention for this VM")
		s.CreateFailures++
		metrics.Failures.WithLabelValues(metrics.StageCreate).Inc()
		return
	} else {
		log.V(1).Info("created backup", "backup", name)
		s.BackupsCreated++
		metrics.BackupsCreated.Inc()
	}

	records, err := r.Cluster.ListBackups(ctx, vm.Namespace, vm.Name)
	if err != nil {
		log.Error(err, "failed to list backups, skipping retention for this VM")
		s.ListFailures++
		metrics.Failures.WithLabelValues(metrics.StageList).Inc()
		return
	}
	if len(records) == 0 {
		log.V(1).Info("no backups found, nothing to prune")
		s.VMsProcessed++
		return
	}

	classification := retention.Classify(records, thresholds)
	r.trace(log, classification)

	s.BackupsEvaluated += len(records)
	metrics.BackupsEvaluated.Add(float64(len(records)))

	for _, rec := range classification.Prune() {
		if r.DryRun {
			log.Info("dry run: would delete backup", "backup", rec.Name, "createdAt", rec.CreatedAt.Format(time.RFC3339))
			s.BackupsDeleted++
			continue
		}
		if err := r.Cluster.DeleteBackup(ctx, rec.Namespace, rec.Name); err != nil {
			log.Error(err, "failed to delete backup", "backup", rec.Name)
			s.DeleteFailures++
			metrics.Failures.WithLabelValues(metrics.StageDelete).Inc()
			continue
		}
		log.V(1).Info("deleted backup", "backup", rec.Name, "createdAt", rec.CreatedAt.Format(time.RFC3339))
		s.BackupsDeleted++
		metrics.BackupsDeleted.Inc()
	}
	s.VMsProcessed++
}

// trace logs the per-record retention decisions at debug verbosity.
func (r *Runner) trace(log logr.Logger, c retention.Classification) {
	if !log.V(1).Enabled() {
		return
	}
	for _, rec := range c.Delete {
		log.V(1).Info("past delete boundary", "backup", rec.Name, "createdAt", rec.CreatedAt.Format(time.RFC3339))
	}
	for week, members := range c.WeekBuckets {
		for _, rec := range members {
			log.V(1).Info("week bucket member", "week", week, "backup", rec.Name, "createdAt", rec.CreatedAt.Format(time.RFC3339))
		}
	}
	for month, members := range c.MonthBuckets {
		for _, rec := range members {
			log.V(1).Info("month bucket member", "month", month, "backup", rec.Name, "createdAt", rec.CreatedAt.Format(time.RFC3339))
		}
	}
}

// BackupName derives a per-run unique backup name from the VM name and the
// current UTC time at second precision.
func BackupName(vmName string, now time.Time) string {
	return fmt.Sprintf("%s-%s", vmName, now.UTC().Format("20060102-150405"))
}
