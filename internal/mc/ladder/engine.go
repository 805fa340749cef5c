package ladder

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/diagnostics"
	"github.com/protolab/gigemc/internal/logging"
	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
)

// DefaultScanInterval is the cadence a PLC scans its ladder programs
// at when not otherwise configured.
const DefaultScanInterval = 10 * time.Millisecond

type deviceKey struct {
	t    devtype.Type
	addr int
}

// Engine is the cooperative, single-threaded ladder scanner. It owns
// no device memory itself; all device access goes through the shared
// devicestore.Store, guarded by the store's own mutex, so the command
// dispatcher observes a consistent view.
type Engine struct {
	store    *devicestore.Store
	interval time.Duration
	bus      *diagnostics.Bus

	mu       sync.Mutex
	programs []Program
	timers   map[int]*TimerState
	counters map[int]*CounterState
	prevBits map[deviceKey]bool
	scans    uint64

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates an Engine bound to store, scanning at interval (or
// DefaultScanInterval if interval <= 0).
func New(store *devicestore.Store, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &Engine{
		store:    store,
		interval: interval,
		timers:   make(map[int]*TimerState),
		counters: make(map[int]*CounterState),
		prevBits: make(map[deviceKey]bool),
	}
}

// SetDiagnostics attaches a bus that ScanCompleted events are
// published to. A nil bus (the default) disables publishing.
func (e *Engine) SetDiagnostics(bus *diagnostics.Bus) { e.bus = bus }

// AddProgram appends a compiled program to the engine's run list.
func (e *Engine) AddProgram(p Program) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.programs = append(e.programs, p)
}

// ClearPrograms removes every loaded program without touching
// timer/counter state.
func (e *Engine) ClearPrograms() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.programs = nil
}

// Running reports whether the scan loop goroutine is active.
func (e *Engine) Running() bool { return e.running.Load() }

// ScanCount returns the number of completed scans.
func (e *Engine) ScanCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scans
}

// Start begins the scan loop. Idempotent.
func (e *Engine) Start() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	e.stopCh = make(chan struct{})
	e.wg.Add(1)
	go e.scanLoop()
	logging.Info("ladder: engine started", zap.Duration("interval", e.interval))
}

// Stop halts the scan loop, joining it with a bounded timeout. Timer/
// counter state and loaded programs survive a Stop; only RESET (via
// Reset) clears them.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.stopCh)
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logging.Warn("ladder: stop timed out waiting for scan loop")
	}
	logging.Info("ladder: engine stopped")
}

// Reset stops the scan loop if running, then clears programs,
// timer/counter state, and edge-memory.
func (e *Engine) Reset() {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.programs = nil
	e.timers = make(map[int]*TimerState)
	e.counters = make(map[int]*CounterState)
	e.prevBits = make(map[deviceKey]bool)
	e.scans = 0
}

func (e *Engine) scanLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		start := time.Now()
		e.scan(start)

		elapsed := time.Since(start)
		sleep := e.interval - elapsed
		if sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-e.stopCh:
				return
			}
		}
	}
}

func (e *Engine) scan(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.advanceTimersLocked(now)
	for _, prog := range e.programs {
		e.runProgram(now, prog)
	}
	e.scans++
	e.bus.Publish(diagnostics.NewEvent(now, "mc", diagnostics.ScanCompleted,
		diagnostics.ScanPayload{ScanNumber: e.scans}))
}

// advanceTimersLocked implements scan step 1: every running timer's
// current value tracks wall-clock elapsed time, capped at setpoint,
// and its contact fires once current reaches setpoint.
func (e *Engine) advanceTimersLocked(now time.Time) {
	for n, t := range e.timers {
		if !t.Running {
			continue
		}
		elapsedX100ms := int(now.Sub(time.Unix(0, t.StartNs)).Seconds() * 10)
		if elapsedX100ms > t.Setpoint {
			elapsedX100ms = t.Setpoint
		}
		t.Current = elapsedX100ms
		e.store.WriteWord(devtype.TN, n, uint16(t.Current))
		_ = e.store.WriteBit(devtype.TC, n, t.Current >= t.Setpoint)
	}
}

func (e *Engine) timer(n int) *TimerState {
	t, ok := e.timers[n]
	if !ok {
		t = &TimerState{}
		e.timers[n] = t
	}
	return t
}

func (e *Engine) counter(n int) *CounterState {
	c, ok := e.counters[n]
	if !ok {
		c = &CounterState{}
		e.counters[n] = c
	}
	return c
}
