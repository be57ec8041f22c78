package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m-marini/wheelly/internal/datafile"
	"github.com/m-marini/wheelly/internal/monitoring"
	"github.com/m-marini/wheelly/internal/robot"
	"github.com/m-marini/wheelly/internal/timeutil"
)

// Config holds the driver's timing tunables, all expressed as durations so
// the loop below never has to think in raw milliseconds.
type Config struct {
	TickInterval            time.Duration
	CommandInterval         time.Duration
	WatchdogInterval        time.Duration
	ConnectionRetryInterval time.Duration
	ReactionInterval        time.Duration
}

// Controller drives a robot.Source end to end: connect, configure, issue
// queued commands no faster than CommandInterval apart, tick the source,
// republish its Status, run the throttled inference callback, and watch
// for a stalled transport. It is the single task that owns source's
// mutable state; all other interaction happens through the queue and the
// broadcast streams.
type Controller struct {
	source    robot.Source
	cfg       Config
	queue     commandQueue
	inference func(robot.Status)
	clock     timeutil.Clock

	statusBroadcast *Broadcast[robot.Status]
	stateBroadcast  *Broadcast[State]
	errorBroadcast  *Broadcast[error]

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	doneCh       chan struct{}

	mu    sync.Mutex
	state State
}

// NewController wires source under cfg. inference may be nil.
func NewController(source robot.Source, cfg Config, inference func(robot.Status)) *Controller {
	if inference == nil {
		inference = func(robot.Status) {}
	}
	return &Controller{
		source:          source,
		cfg:             cfg,
		inference:       inference,
		clock:           timeutil.RealClock{},
		statusBroadcast: NewBroadcast[robot.Status](),
		stateBroadcast:  NewBroadcast[State](),
		errorBroadcast:  NewBroadcast[error](),
		shutdownCh:      make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// SetClock overrides the clock Run uses for command pacing, reaction
// throttling and watchdog timeouts, for deterministic tests. Must be
// called before Run.
func (c *Controller) SetClock(clock timeutil.Clock) {
	c.clock = clock
}

// Move queues a move command and returns its correlation id.
func (c *Controller) Move(dirDeg int, speed float64) uuid.UUID {
	return c.queue.Enqueue(datafile.Command{Kind: datafile.CommandMove, Move: datafile.MoveCommand{DirDeg: dirDeg, Speed: speed}})
}

// Scan queues a scan command and returns its correlation id.
func (c *Controller) Scan(dirDeg int) uuid.UUID {
	return c.queue.Enqueue(datafile.Command{Kind: datafile.CommandScan, Scan: datafile.ScanCommand{DirDeg: dirDeg}})
}

// Halt queues a halt command and returns its correlation id.
func (c *Controller) Halt() uuid.UUID {
	return c.queue.Enqueue(datafile.Command{Kind: datafile.CommandHalt})
}

// SubscribeStatus subscribes to the composite RobotStatus stream.
func (c *Controller) SubscribeStatus() (string, <-chan robot.Status) {
	return c.statusBroadcast.Subscribe()
}

// UnsubscribeStatus removes a status subscriber.
func (c *Controller) UnsubscribeStatus(id string) {
	c.statusBroadcast.Unsubscribe(id)
}

// SubscribeState subscribes to controller lifecycle transitions.
func (c *Controller) SubscribeState() (string, <-chan State) {
	return c.stateBroadcast.Subscribe()
}

// UnsubscribeState removes a state subscriber.
func (c *Controller) UnsubscribeState(id string) {
	c.stateBroadcast.Unsubscribe(id)
}

// SubscribeError subscribes to the error stream (transport/protocol
// failures and captured inference-callback panics).
func (c *Controller) SubscribeError() (string, <-chan error) {
	return c.errorBroadcast.Subscribe()
}

// UnsubscribeError removes an error subscriber.
func (c *Controller) UnsubscribeError(id string) {
	c.errorBroadcast.Unsubscribe(id)
}

// State returns the controller's current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Shutdown requests a clean stop; it is idempotent and returns immediately.
// Use ReadShutdown to wait for full termination.
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		close(c.shutdownCh)
	})
}

// ReadShutdown returns a channel that closes once Run has fully torn down:
// the source is closed and every broadcast stream has completed.
func (c *Controller) ReadShutdown() <-chan struct{} {
	return c.doneCh
}

// Run drives the state machine until ctx is cancelled or Shutdown is
// called. It always closes the source and every broadcast stream before
// returning, and always closes the channel ReadShutdown returns.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.doneCh)
	defer c.statusBroadcast.Close()
	defer c.stateBroadcast.Close()
	defer c.errorBroadcast.Close()

	c.setState(Connecting)
	var lastCommandAt time.Time
	var lastMessageAt time.Time
	var lastReactionAt time.Time
	var lastStatus robot.Status

	for {
		select {
		case <-ctx.Done():
			c.source.Close()
			return ctx.Err()
		case <-c.shutdownCh:
			c.source.Close()
			c.setState(Closed)
			return nil
		default:
		}

		switch c.State() {
		case Connecting:
			if err := c.source.Connect(); err != nil {
				c.publishError(fmt.Errorf("connect: %w", err))
				c.sleep(ctx, c.cfg.ConnectionRetryInterval)
				continue
			}
			c.setState(Configuring)

		case Configuring:
			if err := c.source.Configure(); err != nil {
				c.publishError(fmt.Errorf("configure: %w", err))
				c.setState(Closing)
				continue
			}
			lastMessageAt = c.clock.Now()
			c.setState(Running)

		case Running:
			if pc := c.queue.Dequeue(); pc != nil {
				if c.clock.Since(lastCommandAt) >= c.cfg.CommandInterval {
					if err := c.issue(pc.Command); err != nil {
						c.publishError(fmt.Errorf("issue command %s: %w", pc.ID, err))
						c.setState(Closing)
						continue
					}
					lastCommandAt = c.clock.Now()
				} else {
					c.queue.Requeue(pc)
				}
			}

			status, err := c.source.Tick(c.cfg.TickInterval.Milliseconds())
			if err != nil {
				c.publishError(fmt.Errorf("tick: %w", err))
				c.setState(Closing)
				continue
			}
			if status != lastStatus {
				lastStatus = status
				lastMessageAt = c.clock.Now()
			}
			c.statusBroadcast.Publish(status)

			if c.clock.Since(lastReactionAt) >= c.cfg.ReactionInterval {
				lastReactionAt = c.clock.Now()
				c.react(status)
			}

			if c.cfg.WatchdogInterval > 0 && c.clock.Since(lastMessageAt) > c.cfg.WatchdogInterval {
				c.publishError(&robot.TimeoutError{Op: "watchdog"})
				c.setState(Closing)
				continue
			}

			if !c.sleep(ctx, c.cfg.TickInterval) {
				continue
			}

		case Closing:
			if err := c.source.Close(); err != nil {
				c.publishError(fmt.Errorf("close: %w", err))
			}
			c.setState(Connecting)
			if !c.sleep(ctx, c.cfg.ConnectionRetryInterval) {
				continue
			}

		case Closed:
			return nil
		}
	}
}

// issue dispatches a dequeued command to the source.
func (c *Controller) issue(cmd datafile.Command) error {
	switch cmd.Kind {
	case datafile.CommandMove:
		return c.source.Move(cmd.Move.DirDeg, cmd.Move.Speed)
	case datafile.CommandScan:
		return c.source.Scan(cmd.Scan.DirDeg)
	case datafile.CommandHalt:
		return c.source.Halt()
	default:
		return fmt.Errorf("controller: unknown command kind %d", cmd.Kind)
	}
}

// react invokes the inference callback, capturing any panic as a published
// error rather than letting it take down the driver — the callback is
// meant to be side-effect-free from the controller's viewpoint, but a bug
// in it must not stop the robot.
func (c *Controller) react(status robot.Status) {
	defer func() {
		if r := recover(); r != nil {
			c.publishError(fmt.Errorf("inference callback panicked: %v", r))
		}
	}()
	c.inference(status)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	monitoring.Logf("controller: state -> %s", s)
	c.stateBroadcast.Publish(s)
}

func (c *Controller) publishError(err error) {
	monitoring.Logf("controller: %v", err)
	c.errorBroadcast.Publish(err)
}

// sleep waits for d, returning false early if ctx or shutdown fires first.
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-c.shutdownCh:
		return false
	}
}
