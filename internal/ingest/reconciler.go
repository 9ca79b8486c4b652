package ingest

import (
	"context"

	"signal-dashboard-go/internal/metrics"
	"signal-dashboard-go/internal/sink"
	"signal-dashboard-go/internal/store"

	"go.uber.org/zap"
)

// Reconciler rebuilds in-memory state from the sink's stored history at
// startup.
type Reconciler struct {
	logger     *zap.Logger
	sinkClient sink.ClientInterface
}

// NewReconciler creates a startup reconciler.
func NewReconciler(logger *zap.Logger, sinkClient sink.ClientInterface) *Reconciler {
	return &Reconciler{logger: logger, sinkClient: sinkClient}
}

// Seed fetches prior history from the sink and seeds the state from it.
// Any failure is logged and swallowed: the service must become ready to
// accept new signals with empty state rather than refuse to start. Seed
// must complete before the HTTP listener starts accepting ingests.
func (r *Reconciler) Seed(ctx context.Context, state *store.State) {
	r.logger.Info("Fetching signal history from sink...")

	entries, err := r.sinkClient.FetchHistory(ctx)
	if err != nil {
		r.logger.Error("Failed to fetch history, starting with empty state", zap.Error(err))
		return
	}

	state.Seed(entries)
	metrics.ReconciledRows.Set(float64(state.HistoryLen()))

	snap := state.Snapshot()
	r.logger.Info("Loaded past trades",
		zap.Int("fetched", len(entries)),
		zap.Int("kept", state.HistoryLen()),
		zap.Int64("wins", snap.Wins),
		zap.Int64("losses", snap.Losses),
	)
}
