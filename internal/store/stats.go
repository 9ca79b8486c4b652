package store

// Stats holds the running performance counters. total, wins and losses are
// monotonic; the win rate is derived on read. Like History, it relies on
// State for serialization.
type Stats struct {
	total  int64
	wins   int64
	losses int64
}

// RecordEntry counts one entry signal. The counter is independent of
// history eviction.
func (s *Stats) RecordEntry() {
	s.total++
}

// RecordWin counts one winning outcome.
func (s *Stats) RecordWin() {
	s.wins++
}

// RecordLoss counts one losing outcome.
func (s *Stats) RecordLoss() {
	s.losses++
}

// Seed replaces the counters from reconciled history.
func (s *Stats) Seed(total, wins, losses int64) {
	s.total = total
	s.wins = wins
	s.losses = losses
}

// WinRate returns wins/(wins+losses) as a percentage in [0, 100],
// and 0.0 when no outcome has been recorded.
func (s *Stats) WinRate() float64 {
	decided := s.wins + s.losses
	if decided == 0 {
		return 0.0
	}
	return float64(s.wins) / float64(decided) * 100
}
