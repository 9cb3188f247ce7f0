// Package metrics exposes run counters. When a bind address is configured the
// default registry is served for the duration of the run, so a scheduled
// in-cluster invocation can be scraped while it works.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BackupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_auto_backup_backups_created_total",
		Help: "Number of VirtualMachineBackups created.",
	})
	BackupsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_auto_backup_backups_evaluated_total",
		Help: "Number of backup records evaluated by the retention policy.",
	})
	BackupsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_auto_backup_backups_deleted_total",
		Help: "Number of VirtualMachineBackups deleted by the retention policy.",
	})
	Failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_auto_backup_failures_total",
		Help: "Number of failed collaborator calls, by stage.",
	}, []string{"stage"})
)

// Failure stages.
const (
	StageCreate = "create"
	StageList   = "list"
	StageDelete = "delete"
)

// Serve exposes the default registry on addr until ctx is done. Serve blocks;
// callers usually run it in a goroutine alongside the run.
func Serve(ctx context.Context, log logr.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err, "metrics server failed")
	}
}
