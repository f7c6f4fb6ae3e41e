// Package workflows connects the ledger to Temporal: a traced client, workers
// and idempotent schedules for periodic jobs.
package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/invoiceledger/pkg/logger"
)

// TemporalClient is a Temporal client bound to one namespace.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	log       logger.Logger
}

// NewTemporalClient dials hostPort with OTel tracing and the ledger logger.
// Call Close on shutdown.
func NewTemporalClient(ctx context.Context, hostPort, namespace string, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("github.com/ghuser/invoiceledger/pkg/workflows"),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     hostPort,
		Namespace:    namespace,
		Logger:       newTemporalLogger(log),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal at %s: %w", hostPort, err)
	}
	log.Info("temporal client connected", "host_port", hostPort, "namespace", namespace)

	return &TemporalClient{Client: c, Namespace: namespace, log: log}, nil
}

// newTemporalLogger routes SDK logs through the ledger's slog handler.
func newTemporalLogger(log logger.Logger) temporallog.Logger {
	return temporallog.NewStructuredLogger(log.ToSlog().With("component", "temporal"))
}

// NewWorker returns a worker polling taskQueue. Tracing comes from the
// client's interceptor.
func (tc *TemporalClient) NewWorker(taskQueue string) worker.Worker {
	return worker.New(tc.Client, taskQueue, worker.Options{})
}

// Schedule describes a workflow started periodically by Temporal.
type Schedule struct {
	ID        string
	TaskQueue string
	Cron      string
	Workflow  any
	Args      []any
}

// EnsureSchedule creates the schedule, or rewrites the cron spec of an
// existing one with the same ID so restarts never create duplicates.
func (tc *TemporalClient) EnsureSchedule(ctx context.Context, s Schedule) error {
	schedules := tc.Client.ScheduleClient()
	spec := scheduleSpec(s.Cron)

	_, err := schedules.Create(ctx, client.ScheduleOptions{
		ID:   s.ID,
		Spec: spec,
		Action: &client.ScheduleWorkflowAction{
			ID:        s.ID,
			Workflow:  s.Workflow,
			Args:      s.Args,
			TaskQueue: s.TaskQueue,
		},
	})
	switch {
	case err == nil:
		tc.log.Info("schedule created", "schedule_id", s.ID, "cron", s.Cron)
		return nil
	case !errors.Is(err, temporal.ErrScheduleAlreadyRunning):
		return fmt.Errorf("create schedule %s: %w", s.ID, err)
	}

	err = schedules.GetHandle(ctx, s.ID).Update(ctx, client.ScheduleUpdateOptions{
		DoUpdate: func(in client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
			sched := in.Description.Schedule
			sched.Spec = &spec
			return &client.ScheduleUpdate{Schedule: &sched}, nil
		},
	})
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", s.ID, err)
	}
	tc.log.Info("schedule updated", "schedule_id", s.ID, "cron", s.Cron)
	return nil
}

func scheduleSpec(cron string) client.ScheduleSpec {
	return client.ScheduleSpec{CronExpressions: []string{cron}}
}

// Close shuts down the client connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}
