package store

import (
	"sync"
	"time"

	"signal-dashboard-go/internal/models"
)

// DateLayout is the calendar-date representation used for signal
// timestamps and for the today's-trades comparison.
const DateLayout = "2006-01-02"

// TimeLayout is the wall-clock representation stored on signals.
const TimeLayout = "15:04:05"

// Snapshot is a consistent read of the running statistics.
type Snapshot struct {
	TotalTrades int64   `json:"total_trades"`
	TodayTrades int     `json:"today_trades"`
	Wins        int64   `json:"wins"`
	Losses      int64   `json:"losses"`
	WinRate     float64 `json:"win_rate"`
}

// State owns the signal history and statistics behind a single lock.
// Every mutation of either structure goes through it, so concurrent
// ingests can never interleave a read-modify-write on the counters or
// the history head.
type State struct {
	mu      sync.Mutex
	history *History
	stats   Stats
	now     func() time.Time
}

// NewState creates empty state with the given history capacity.
func NewState(capacity int) *State {
	return &State{
		history: NewHistory(capacity),
		now:     time.Now,
	}
}

// Apply mutates state for one classified signal: entries are pushed onto
// history and counted, outcomes adjust the win/loss counters only, and
// unrecognized signals are kept in history for display without touching
// any counter.
func (st *State) Apply(s models.Signal) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch s.Kind() {
	case models.KindEntry:
		st.history.PushFront(s)
		st.stats.RecordEntry()
	case models.KindWin:
		st.stats.RecordWin()
	case models.KindLoss:
		st.stats.RecordLoss()
	default:
		st.history.PushFront(s)
	}
}

// Seed replaces history and counters from reconciled entries. It truncates
// to the history capacity and derives the counters from outcome markers in
// the loaded rows.
func (st *State) Seed(entries []models.Signal) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.history.Replace(entries)

	var wins, losses int64
	for _, s := range entries {
		switch outcomeMarker(s) {
		case models.KindWin:
			wins++
		case models.KindLoss:
			losses++
		}
	}
	st.stats.Seed(int64(len(entries)), wins, losses)
}

// outcomeMarker inspects a reconciled row for a win/loss marker in either
// its result or action field.
func outcomeMarker(s models.Signal) models.Kind {
	if k := models.Classify(s.Result); k == models.KindWin || k == models.KindLoss {
		return k
	}
	k := s.Kind()
	if k == models.KindWin || k == models.KindLoss {
		return k
	}
	return models.KindUnknown
}

// Snapshot returns the current statistics. today_trades is recomputed from
// history on every call so the count stays correct across a date rollover.
func (st *State) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	today := st.now().Format(DateLayout)
	return Snapshot{
		TotalTrades: st.stats.total,
		TodayTrades: st.history.CountWhere(func(s models.Signal) bool {
			return s.Date == today
		}),
		Wins:    st.stats.wins,
		Losses:  st.stats.losses,
		WinRate: st.stats.WinRate(),
	}
}

// Signals returns a copy of the stored history, newest first.
func (st *State) Signals() []models.Signal {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.All()
}

// HistoryLen returns the number of stored history rows.
func (st *State) HistoryLen() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.Len()
}
