package budget

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"jobsearch-engine/internal/storage"
)

const stateKey = "budget:state"

// DefaultCeiling is the monthly upstream-call allowance shared by the whole
// process.
const DefaultCeiling = 200

// State is what gets persisted. Period is the calendar month ("2026-08",
// UTC) the counter belongs to.
type State struct {
	Period string `json:"period"`
	Used   int    `json:"used"`
}

// Stats is the read-only snapshot surfaced to operators.
type Stats struct {
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetDate time.Time `json:"resetDate"`
}

// Budget tracks the rolling monthly quota. Check-and-increment is atomic;
// a refusal is final for that attempt, there is no queueing.
type Budget struct {
	mu      sync.Mutex
	kv      storage.KV
	ceiling int
	state   State
	now     func() time.Time
}

func New(kv storage.KV, ceiling int) *Budget {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	b := &Budget{kv: kv, ceiling: ceiling, now: func() time.Time { return time.Now().UTC() }}
	b.restore()
	return b
}

func (b *Budget) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, ok, err := b.kv.Get(ctx, stateKey)
	if err != nil {
		log.Printf("[budget] restore failed: %v", err)
		return
	}
	if !ok {
		return
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil || st.Used < 0 {
		log.Printf("[budget] dropping corrupt state: %v", err)
		return
	}
	b.state = st
}

// TryConsume reserves one upstream call. It rolls the counter over when the
// calendar month has changed since the stored period.
func (b *Budget) TryConsume() (allowed bool, remaining int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()

	if b.state.Used >= b.ceiling {
		return false, 0
	}
	b.state.Used++
	b.persistLocked()
	return true, b.ceiling - b.state.Used
}

// Stats never mutates the persisted counter; the month roll is only applied
// to the returned view.
func (b *Budget) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	used := b.state.Used
	if b.state.Period != b.periodKey() {
		used = 0
	}

	now := b.now()
	reset := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	return Stats{
		Used:      used,
		Remaining: b.ceiling - used,
		ResetDate: reset,
	}
}

func (b *Budget) periodKey() string {
	return b.now().Format("2006-01")
}

func (b *Budget) rollLocked() {
	if period := b.periodKey(); b.state.Period != period {
		b.state = State{Period: period, Used: 0}
	}
}

func (b *Budget) persistLocked() {
	raw, _ := json.Marshal(b.state)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.kv.Set(ctx, stateKey, string(raw)); err != nil {
		// the in-memory counter stays authoritative
		log.Printf("[budget] persist failed: %v", err)
	}
}
