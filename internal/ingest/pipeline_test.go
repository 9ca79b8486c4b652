package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"signal-dashboard-go/internal/archive"
	"signal-dashboard-go/internal/models"
	"signal-dashboard-go/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeSink records pushed payloads and returns canned history.
type fakeSink struct {
	mu       sync.Mutex
	pushed   []models.Payload
	pushErr  error
	history  []models.Signal
	fetchErr error
}

func (f *fakeSink) PushSignal(ctx context.Context, payload models.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, payload)
	return f.pushErr
}

func (f *fakeSink) FetchHistory(ctx context.Context) ([]models.Signal, error) {
	return f.history, f.fetchErr
}

func (f *fakeSink) pushedPayloads() []models.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Payload, len(f.pushed))
	copy(out, f.pushed)
	return out
}

func newTestPipeline(t *testing.T) (*Pipeline, *store.State, *fakeSink) {
	t.Helper()
	state := store.NewState(10)
	sinkClient := &fakeSink{}
	p := NewPipeline(zap.NewNop(), state, sinkClient, nil, "-100123", time.Second)
	return p, state, sinkClient
}

func TestIngestEntry(t *testing.T) {
	p, state, sinkClient := newTestPipeline(t)

	payload, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000}`))
	assert.NoError(t, err)
	p.Wait()

	snap := state.Snapshot()
	assert.Equal(t, int64(1), snap.TotalTrades)
	assert.Equal(t, "BTCUSD", state.Signals()[0].Ticker)

	// Timestamps were assigned at ingestion.
	assert.NotEmpty(t, payload.Date)
	assert.NotEmpty(t, payload.Time)
	assert.NotEmpty(t, payload.ID)

	// Routing and text were synthesized.
	assert.Equal(t, "-100123", payload.ChatID)
	assert.Contains(t, payload.Text, "BTCUSD")
	assert.Contains(t, payload.Text, "50000")

	pushed := sinkClient.pushedPayloads()
	assert.Len(t, pushed, 1)
	assert.Equal(t, payload.ID, pushed[0].ID)
}

func TestIngestOutcomeAfterEntry(t *testing.T) {
	p, state, _ := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000}`))
	assert.NoError(t, err)
	_, err = p.Ingest(context.Background(), []byte(`{"action":"win","ticker":"BTCUSD","price":50000}`))
	assert.NoError(t, err)
	p.Wait()

	snap := state.Snapshot()
	assert.Equal(t, int64(1), snap.TotalTrades)
	assert.Equal(t, int64(1), snap.Wins)
	assert.Equal(t, 100.0, snap.WinRate)
	// The outcome adjusted the counters without creating a history row.
	assert.Equal(t, 1, state.HistoryLen())
}

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"MissingTicker", `{"action":"buy","price":50000}`},
		{"MissingAction", `{"ticker":"BTCUSD","price":50000}`},
		{"MissingPrice", `{"action":"buy","ticker":"BTCUSD"}`},
		{"NonNumericPrice", `{"action":"buy","ticker":"BTCUSD","price":"not a price"}`},
		{"EmptyStringPrice", `{"action":"buy","ticker":"BTCUSD","price":""}`},
		{"NotJSON", `hello world`},
		{"EmptyBody", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, state, sinkClient := newTestPipeline(t)

			_, err := p.Ingest(context.Background(), []byte(tt.body))

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)

			// A rejected body mutates nothing and forwards nothing.
			p.Wait()
			snap := state.Snapshot()
			assert.Equal(t, int64(0), snap.TotalTrades)
			assert.Equal(t, 0, state.HistoryLen())
			assert.Empty(t, sinkClient.pushedPayloads())
		})
	}
}

func TestIngestTextPlainStyleBody(t *testing.T) {
	p, state, _ := newTestPipeline(t)

	// A double-encoded JSON string, as produced by sources that wrap the
	// alert body once more.
	body := []byte(`"{\"action\":\"sell\",\"ticker\":\"ETHUSD\",\"price\":3000}"`)
	_, err := p.Ingest(context.Background(), body)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), state.Snapshot().TotalTrades)
}

func TestIngestUnknownAction(t *testing.T) {
	p, state, sinkClient := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), []byte(`{"action":"hold","ticker":"BTCUSD","price":50000}`))
	assert.NoError(t, err)
	p.Wait()

	snap := state.Snapshot()
	assert.Equal(t, int64(0), snap.TotalTrades)
	assert.Equal(t, int64(0), snap.Wins)
	assert.Equal(t, 1, state.HistoryLen())
	// Unknown signals are still forwarded.
	assert.Len(t, sinkClient.pushedPayloads(), 1)
}

func TestForwardingFailureDoesNotAffectIngest(t *testing.T) {
	p, state, sinkClient := newTestPipeline(t)
	sinkClient.pushErr = errors.New("sink unreachable")

	_, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000}`))
	assert.NoError(t, err)
	p.Wait()

	// State reflects the ingest even though forwarding failed.
	assert.Equal(t, int64(1), state.Snapshot().TotalTrades)
}

func TestIngestRecordsToArchive(t *testing.T) {
	state := store.NewState(10)
	sinkClient := &fakeSink{}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	archiveStore, err := archive.Open(dsn, zap.NewNop())
	assert.NoError(t, err)

	p := NewPipeline(zap.NewNop(), state, sinkClient, archiveStore, "-100123", time.Second)

	payload, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000}`))
	assert.NoError(t, err)
	p.Wait()

	records, err := archiveStore.Recent(10)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, payload.ID, records[0].IngestID)
	assert.Equal(t, "BTCUSD", records[0].Ticker)
	assert.Equal(t, "ENTRY", records[0].Kind)
}

func TestIngestCallerTimestampKept(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	payload, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000,"date":"2026-01-02","time":"03:04:05"}`))
	assert.NoError(t, err)
	assert.Equal(t, "2026-01-02", payload.Date)
	assert.Equal(t, "03:04:05", payload.Time)
}

func TestIngestCallerRoutingKept(t *testing.T) {
	p, _, sinkClient := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000,"chat_id":"-200456","text":"hi"}`))
	assert.NoError(t, err)
	p.Wait()

	pushed := sinkClient.pushedPayloads()
	assert.Len(t, pushed, 1)
	assert.Equal(t, "-200456", pushed[0].ChatID)
	assert.Equal(t, "hi", pushed[0].Text)
}

func TestConcurrentIngests(t *testing.T) {
	p, state, _ := newTestPipeline(t)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Ingest(context.Background(), []byte(`{"action":"buy","ticker":"BTCUSD","price":50000}`))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	p.Wait()

	assert.Equal(t, int64(30), state.Snapshot().TotalTrades)
}
