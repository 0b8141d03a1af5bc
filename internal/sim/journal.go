package sim

import (
	"sync"

	"github.com/amphora-protocol/aam/internal/types"
)

// Journal keeps operation events in memory for paper runs and tests.
type Journal struct {
	mu     sync.Mutex
	seq    int64
	events []types.OperationEvent
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) NextOperationSequence() (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	return j.seq, nil
}

func (j *Journal) RecordOperation(event types.OperationEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (j *Journal) Events() []types.OperationEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]types.OperationEvent, len(j.events))
	copy(out, j.events)
	return out
}
