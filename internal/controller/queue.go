package controller

import (
	"sync"

	"github.com/google/uuid"

	"github.com/m-marini/wheelly/internal/datafile"
)

// PendingCommand is a queued move/scan/halt command tagged with a
// correlation id for log correlation across the command's issue and its
// eventual acknowledgement in the status stream.
type PendingCommand struct {
	ID      uuid.UUID
	Command datafile.Command
}

// commandQueue holds one pending slot per command kind: a new Enqueue
// overwrites only the slot matching its kind, since a queued move and a
// queued scan are independent and neither should clobber the other —
// only a same-kind command still in flight is stale enough to discard.
// order tracks which kinds currently hold a pending command, oldest
// first, so Dequeue drains them in the order they first became pending.
type commandQueue struct {
	mu      sync.Mutex
	pending map[datafile.CommandKind]*PendingCommand
	order   []datafile.CommandKind
}

// Enqueue replaces the still-pending command of cmd's kind, if any, and
// returns the new command's correlation id.
func (q *commandQueue) Enqueue(cmd datafile.Command) uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := uuid.New()
	k := cmd.Kind
	if q.pending == nil {
		q.pending = make(map[datafile.CommandKind]*PendingCommand)
	}
	if _, ok := q.pending[k]; !ok {
		q.order = append(q.order, k)
	}
	q.pending[k] = &PendingCommand{ID: id, Command: cmd}
	return id
}

// Dequeue removes and returns the oldest-ready pending command across all
// kinds, or nil if none is queued.
func (q *commandQueue) Dequeue() *PendingCommand {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return nil
	}
	k := q.order[0]
	q.order = q.order[1:]
	pc := q.pending[k]
	delete(q.pending, k)
	return pc
}

// Requeue restores pc as the pending command of its kind, but only if
// nothing newer of the same kind has since been Enqueue'd — used when the
// driver dequeues a command but the commandInterval hasn't yet elapsed, so
// the command isn't lost but also never clobbers a command a caller issued
// in the meantime. pc is restored at the front of the drain order, since
// it was already the oldest pending command of its kind.
func (q *commandQueue) Requeue(pc *PendingCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	k := pc.Command.Kind
	if q.pending == nil {
		q.pending = make(map[datafile.CommandKind]*PendingCommand)
	}
	if _, ok := q.pending[k]; ok {
		return
	}
	q.pending[k] = pc
	q.order = append([]datafile.CommandKind{k}, q.order...)
}
