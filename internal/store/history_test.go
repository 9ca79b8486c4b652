package store

import (
	"fmt"
	"testing"

	"signal-dashboard-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func entry(ticker string) models.Signal {
	return models.Signal{Action: "buy", Ticker: ticker, Price: 100}
}

func TestHistoryPushFront(t *testing.T) {
	h := NewHistory(3)

	h.PushFront(entry("A"))
	h.PushFront(entry("B"))
	h.PushFront(entry("C"))

	all := h.All()
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "C", all[0].Ticker)
	assert.Equal(t, "A", all[2].Ticker)
}

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 4; i++ {
		h.PushFront(entry(fmt.Sprintf("T%d", i)))
	}

	assert.Equal(t, 3, h.Len())
	all := h.All()
	assert.Equal(t, "T3", all[0].Ticker)
	// The oldest entry has been evicted.
	for _, s := range all {
		assert.NotEqual(t, "T0", s.Ticker)
	}
}

func TestHistoryNeverExceedsCapacity(t *testing.T) {
	h := NewHistory(5)
	for i := 0; i < 50; i++ {
		h.PushFront(entry(fmt.Sprintf("T%d", i)))
		assert.LessOrEqual(t, h.Len(), 5)
	}
}

func TestHistoryOrderAfterWrapAround(t *testing.T) {
	h := NewHistory(3)

	// Push enough to wrap the buffer several times over.
	for i := 0; i < 8; i++ {
		h.PushFront(entry(fmt.Sprintf("T%d", i)))
	}

	all := h.All()
	assert.Equal(t, []string{"T7", "T6", "T5"},
		[]string{all[0].Ticker, all[1].Ticker, all[2].Ticker})
}

func TestHistoryPushAfterReplace(t *testing.T) {
	h := NewHistory(3)
	h.Replace([]models.Signal{entry("B"), entry("A")})
	h.PushFront(entry("C"))

	all := h.All()
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"C", "B", "A"},
		[]string{all[0].Ticker, all[1].Ticker, all[2].Ticker})

	h.PushFront(entry("D"))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "D", h.All()[0].Ticker)
	assert.Equal(t, "B", h.All()[2].Ticker)
}

func TestHistoryReplace(t *testing.T) {
	t.Run("TruncatesToCapacity", func(t *testing.T) {
		h := NewHistory(2)
		h.Replace([]models.Signal{entry("A"), entry("B"), entry("C")})

		assert.Equal(t, 2, h.Len())
		assert.Equal(t, "A", h.All()[0].Ticker)
	})

	t.Run("DiscardsPriorContents", func(t *testing.T) {
		h := NewHistory(5)
		h.PushFront(entry("OLD"))
		h.Replace([]models.Signal{entry("NEW")})

		assert.Equal(t, 1, h.Len())
		assert.Equal(t, "NEW", h.All()[0].Ticker)
	})
}

func TestHistoryCountWhere(t *testing.T) {
	h := NewHistory(10)
	h.PushFront(models.Signal{Action: "buy", Ticker: "A", Date: "2026-08-30"})
	h.PushFront(models.Signal{Action: "buy", Ticker: "B", Date: "2026-08-29"})
	h.PushFront(models.Signal{Action: "buy", Ticker: "C", Date: "2026-08-30"})

	count := h.CountWhere(func(s models.Signal) bool { return s.Date == "2026-08-30" })
	assert.Equal(t, 2, count)
}

func TestHistoryAllReturnsCopy(t *testing.T) {
	h := NewHistory(3)
	h.PushFront(entry("A"))

	all := h.All()
	all[0].Ticker = "MUTATED"

	assert.Equal(t, "A", h.All()[0].Ticker)
}
