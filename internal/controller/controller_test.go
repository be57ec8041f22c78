package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-marini/wheelly/internal/datafile"
	"github.com/m-marini/wheelly/internal/robot"
	"github.com/m-marini/wheelly/internal/timeutil"
)

// fakeSource is a scripted robot.Source test double: each call records
// itself and returns the next queued error/status, looping status forever
// once the script runs out.
type fakeSource struct {
	mu sync.Mutex

	connectErr   error
	configureErr error
	tickErr      error
	tickErrAfter int // Tick calls before tickErr fires, 0 = never

	statuses []robot.Status
	tickN    int

	moves  []struct{ dirDeg int; speed float64 }
	scans  []int
	halts  int
	closed int
}

func (f *fakeSource) Connect() error   { return f.connectErr }
func (f *fakeSource) Configure() error { return f.configureErr }

func (f *fakeSource) Move(dirDeg int, speed float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, struct {
		dirDeg int
		speed  float64
	}{dirDeg, speed})
	return nil
}

func (f *fakeSource) Scan(dirDeg int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, dirDeg)
	return nil
}

func (f *fakeSource) Halt() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halts++
	return nil
}

func (f *fakeSource) Tick(dtMillis int64) (robot.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickN++
	if f.tickErrAfter > 0 && f.tickN >= f.tickErrAfter {
		return robot.Status{}, f.tickErr
	}
	if len(f.statuses) == 0 {
		return robot.Status{}, nil
	}
	idx := f.tickN - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func fastConfig() Config {
	return Config{
		TickInterval:            time.Millisecond,
		CommandInterval:         0,
		WatchdogInterval:        0,
		ConnectionRetryInterval: time.Millisecond,
		ReactionInterval:        0,
	}
}

// TestControllerHappyPathPublishesStatusAndIssuesCommands runs scenario S4:
// a controller against a source that never errors should reach Running,
// issue a queued Move, and publish status updates, then shut down cleanly.
func TestControllerHappyPathPublishesStatusAndIssuesCommands(t *testing.T) {
	src := &fakeSource{statuses: []robot.Status{{SimTime: 1}, {SimTime: 2}, {SimTime: 3}}}
	var reacted []robot.Status
	var reactMu sync.Mutex
	c := NewController(src, fastConfig(), func(s robot.Status) {
		reactMu.Lock()
		reacted = append(reacted, s)
		reactMu.Unlock()
	})

	_, statusCh := c.SubscribeStatus()
	_, stateCh := c.SubscribeState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	if st := <-stateCh; st != Connecting {
		t.Fatalf("expected Connecting first, got %v", st)
	}

	c.Move(90, 0.5)

	waitForState(t, stateCh, Running)
	<-statusCh

	c.Shutdown()
	<-c.ReadShutdown()
	<-done

	src.mu.Lock()
	defer src.mu.Unlock()
	if len(src.moves) != 1 || src.moves[0].dirDeg != 90 {
		t.Fatalf("expected one Move(90, 0.5), got %+v", src.moves)
	}
	if src.closed == 0 {
		t.Fatalf("expected source to be closed on shutdown")
	}
}

// TestCommandQueueDistinctKindsDoNotSupersede covers spec section 4.6's
// per-kind latest-wins rule: queuing a Scan after a Move must not discard
// the still-pending Move, since they are different command kinds. Both
// must drain, oldest-enqueued kind first, and only a same-kind Enqueue
// should replace a pending command.
func TestCommandQueueDistinctKindsDoNotSupersede(t *testing.T) {
	var q commandQueue

	q.Enqueue(datafile.Command{Kind: datafile.CommandMove, Move: datafile.MoveCommand{DirDeg: 90, Speed: 0.5}})
	q.Enqueue(datafile.Command{Kind: datafile.CommandScan, Scan: datafile.ScanCommand{DirDeg: 45}})

	first := q.Dequeue()
	if first == nil || first.Command.Kind != datafile.CommandMove {
		t.Fatalf("expected the Move to drain first, got %+v", first)
	}
	second := q.Dequeue()
	if second == nil || second.Command.Kind != datafile.CommandScan {
		t.Fatalf("expected the Scan to still be queued, got %+v", second)
	}
	if third := q.Dequeue(); third != nil {
		t.Fatalf("expected the queue to be drained, got %+v", third)
	}

	// A same-kind Enqueue still supersedes the earlier pending command of
	// that kind.
	q.Enqueue(datafile.Command{Kind: datafile.CommandMove, Move: datafile.MoveCommand{DirDeg: 0, Speed: 0.1}})
	q.Enqueue(datafile.Command{Kind: datafile.CommandMove, Move: datafile.MoveCommand{DirDeg: 180, Speed: 0.2}})
	if pc := q.Dequeue(); pc == nil || pc.Command.Move.DirDeg != 180 {
		t.Fatalf("expected the later Move to supersede the earlier one, got %+v", pc)
	}
}

func waitForState(t *testing.T, ch <-chan State, want State) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case s := <-ch:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

// TestControllerHonorsCommandIntervalViaClock exercises SetClock: with the
// clock frozen, a second queued Move must not issue until the fake clock
// is advanced past CommandInterval, proving Run consults the injected
// Clock rather than wall time for command pacing.
func TestControllerHonorsCommandIntervalViaClock(t *testing.T) {
	src := &fakeSource{statuses: []robot.Status{{SimTime: 1}}}
	cfg := fastConfig()
	cfg.CommandInterval = time.Hour
	c := NewController(src, cfg, nil)

	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	c.SetClock(clock)

	_, stateCh := c.SubscribeState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitForState(t, stateCh, Running)

	c.Move(90, 0.5)
	time.Sleep(20 * time.Millisecond)

	src.mu.Lock()
	firstCount := len(src.moves)
	src.mu.Unlock()
	if firstCount != 1 {
		t.Fatalf("expected the first Move to issue immediately, got %d", firstCount)
	}

	c.Move(180, 0.25)
	time.Sleep(20 * time.Millisecond)

	src.mu.Lock()
	stillOne := len(src.moves)
	src.mu.Unlock()
	if stillOne != 1 {
		t.Fatalf("expected the second Move to be held by CommandInterval, got %d", stillOne)
	}

	clock.Advance(2 * time.Hour)
	time.Sleep(20 * time.Millisecond)

	src.mu.Lock()
	defer src.mu.Unlock()
	if len(src.moves) != 2 || src.moves[1].dirDeg != 180 {
		t.Fatalf("expected the second Move to issue after advancing past CommandInterval, got %+v", src.moves)
	}

	c.Shutdown()
	<-c.ReadShutdown()
	<-done
}

// TestControllerWatchdogTriggersClosing covers scenario S8: when Tick keeps
// returning the same status, with no new message, for longer than
// WatchdogInterval, the controller must transition to Closing and back
// through Connecting rather than hanging in Running.
func TestControllerWatchdogTriggersClosing(t *testing.T) {
	src := &fakeSource{
		statuses:     []robot.Status{{SimTime: 1}},
		tickErrAfter: 0,
	}
	cfg := fastConfig()
	cfg.WatchdogInterval = time.Millisecond
	c := NewController(src, cfg, nil)

	_, stateCh := c.SubscribeState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitForState(t, stateCh, Running)
	time.Sleep(20 * time.Millisecond)
	waitForState(t, stateCh, Closing)
	waitForState(t, stateCh, Connecting)

	c.Shutdown()
	<-c.ReadShutdown()
	<-done
}

// TestControllerConfigureFailureGoesToClosing ensures a Configure error
// does not get stuck in Configuring and instead routes through Closing.
func TestControllerConfigureFailureGoesToClosing(t *testing.T) {
	src := &fakeSource{configureErr: &robot.TransportError{Op: "configure", Err: context.DeadlineExceeded}}
	c := NewController(src, fastConfig(), nil)

	_, stateCh := c.SubscribeState()
	_, errCh := c.SubscribeError()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitForState(t, stateCh, Closing)
	<-errCh

	c.Shutdown()
	<-c.ReadShutdown()
	<-done
}

// TestControllerInferencePanicIsCapturedAsError ensures a panicking
// inference callback is recovered and published rather than crashing Run.
func TestControllerInferencePanicIsCapturedAsError(t *testing.T) {
	src := &fakeSource{statuses: []robot.Status{{SimTime: 1}}}
	c := NewController(src, fastConfig(), func(robot.Status) {
		panic("boom")
	})

	_, errCh := c.SubscribeError()
	_, stateCh := c.SubscribeState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitForState(t, stateCh, Running)

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected a non-nil captured panic error")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for captured panic error")
	}

	c.Shutdown()
	<-c.ReadShutdown()
	<-done
}
