// Package workflows holds the invoice context's Temporal workflows and the
// activities they schedule.
package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	invoicedomain "github.com/ghuser/invoiceledger/services/invoice/domain"
	"github.com/ghuser/invoiceledger/services/invoice/domain/models"
)

// ReconcileWorkflowID is the fixed id of the cron-scheduled reconciliation run.
const ReconcileWorkflowID = "invoice-reconcile-totals"

var (
	// reconcileBatchSize is the number of invoices one activity recomputes.
	reconcileBatchSize = 100
	// batchesPerRun bounds the event history of a single run; the walk then
	// continues as a new run from the last id.
	batchesPerRun = 50
)

// Reconciler is the slice of the invoice service the activities depend on.
type Reconciler interface {
	ListInvoiceIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
	RecomputeTotal(ctx context.Context, id int64) (*models.Invoice, bool, error)
}

// ReconcileResult summarises a reconciliation pass. It is also the workflow
// input, carrying progress from one run to the next.
type ReconcileResult struct {
	LastID  int64   `json:"lastId"`
	Checked int     `json:"checked"`
	Drifted []int64 `json:"drifted"`
}

// BatchResult is the outcome of one ReconcileBatch activity.
type BatchResult struct {
	LastID  int64   `json:"lastId"`
	Checked int     `json:"checked"`
	Drifted []int64 `json:"drifted"`
	More    bool    `json:"more"`
}

// Activities are the side-effecting steps of ReconcileTotalsWorkflow.
type Activities struct {
	Invoices Reconciler
}

// ReconcileBatch recomputes the totals of the next page of invoices after
// afterID. An invoice deleted since it was listed is skipped. Recomputing is
// idempotent, so a retried batch is safe.
func (a *Activities) ReconcileBatch(ctx context.Context, afterID int64) (BatchResult, error) {
	ids, err := a.Invoices.ListInvoiceIDs(ctx, afterID, reconcileBatchSize)
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{LastID: afterID, Drifted: []int64{}, More: len(ids) == reconcileBatchSize}
	for _, id := range ids {
		_, drifted, err := a.Invoices.RecomputeTotal(ctx, id)
		switch {
		case invoicedomain.IsNotFound(err):
			// deleted since it was listed
		case err != nil:
			return BatchResult{}, fmt.Errorf("recompute invoice %d: %w", id, err)
		default:
			res.Checked++
			if drifted {
				res.Drifted = append(res.Drifted, id)
			}
		}
		res.LastID = id
	}
	return res, nil
}

// ReconcileTotalsWorkflow walks every invoice in id order, re-deriving each
// total from its items and collecting the ids whose stored total was wrong.
// After batchesPerRun batches it continues as a new run with its progress.
func ReconcileTotalsWorkflow(ctx workflow.Context, progress ReconcileResult) (ReconcileResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})
	log := workflow.GetLogger(ctx)

	if progress.Drifted == nil {
		progress.Drifted = []int64{}
	}

	var a *Activities
	for batch := 0; ; batch++ {
		if batch == batchesPerRun {
			log.Info("invoice reconciliation continuing as new",
				"last_id", progress.LastID, "checked", progress.Checked)
			return progress, workflow.NewContinueAsNewError(ctx, ReconcileTotalsWorkflow, progress)
		}

		var res BatchResult
		if err := workflow.ExecuteActivity(ctx, a.ReconcileBatch, progress.LastID).Get(ctx, &res); err != nil {
			return progress, fmt.Errorf("reconcile invoices after %d: %w", progress.LastID, err)
		}
		progress.LastID = res.LastID
		progress.Checked += res.Checked
		progress.Drifted = append(progress.Drifted, res.Drifted...)
		if !res.More {
			break
		}
	}

	log.Info("invoice totals reconciled", "checked", progress.Checked, "drifted", len(progress.Drifted))
	return progress, nil
}

// Register adds the reconciliation workflow and its activities to w.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflow(ReconcileTotalsWorkflow)
	w.RegisterActivity(acts)
}
