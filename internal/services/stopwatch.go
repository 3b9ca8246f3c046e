package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// DefaultTickInterval is the display refresh cadence while the stopwatch runs
const DefaultTickInterval = 100 * time.Millisecond

var (
	ErrStopwatchRunning    = errors.New("stopwatch is already running")
	ErrStopwatchNotRunning = errors.New("stopwatch is not running")
)

// TimingRecorder receives stopwatch readings for the SDI timing sheet
type TimingRecorder interface {
	SetInitialTime(seconds float64)
	SetFinalTime(seconds float64)
}

// Stopwatch measures the Ti and Tf intervals of an SDI test.
//
// Idle -> Running -> Stopped -> (Reset) -> Idle. Starting from Stopped
// begins a new measurement from zero.
type Stopwatch struct {
	mu        sync.Mutex
	phase     models.StopwatchPhase
	elapsed   time.Duration // frozen value while not running
	startedAt time.Time
	now       func() time.Time
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
	onTick    func(models.StopwatchState)
	onState   func(models.StopwatchState)
	recorder  TimingRecorder
}

// NewStopwatch creates an idle stopwatch that writes recordings to recorder.
// A non-positive interval falls back to DefaultTickInterval.
func NewStopwatch(recorder TimingRecorder, interval time.Duration) *Stopwatch {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Stopwatch{
		phase:    models.StopwatchIdle,
		now:      time.Now,
		interval: interval,
		recorder: recorder,
	}
}

// SetClock replaces the wall clock, used by tests
func (sw *Stopwatch) SetClock(now func() time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.now = now
}

// SetTickHandler sets the callback invoked on every display tick while
// running. The handler must not call back into the stopwatch.
func (sw *Stopwatch) SetTickHandler(handler func(models.StopwatchState)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.onTick = handler
}

// SetStateHandler sets the callback invoked after Start, Stop and Reset
func (sw *Stopwatch) SetStateHandler(handler func(models.StopwatchState)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.onState = handler
}

// Start begins a new measurement from zero. Rejected while already running.
func (sw *Stopwatch) Start() error {
	sw.mu.Lock()
	if sw.phase == models.StopwatchRunning {
		sw.mu.Unlock()
		return ErrStopwatchRunning
	}

	sw.startedAt = sw.now()
	sw.elapsed = 0
	sw.phase = models.StopwatchRunning
	sw.startTicker()
	state, handler := sw.stateLocked(), sw.onState
	sw.mu.Unlock()

	log.Println("⏱️  Stopwatch: Started")
	notify(handler, state)
	return nil
}

// Stop freezes the elapsed time. Only valid while running.
func (sw *Stopwatch) Stop() error {
	sw.mu.Lock()
	if sw.phase != models.StopwatchRunning {
		sw.mu.Unlock()
		return ErrStopwatchNotRunning
	}

	sw.elapsed = sw.now().Sub(sw.startedAt)
	sw.phase = models.StopwatchStopped
	stop, done := sw.detachTicker()
	state, handler := sw.stateLocked(), sw.onState
	sw.mu.Unlock()

	waitTicker(stop, done)
	log.Printf("⏹️  Stopwatch: Stopped at %s", state.Display)
	notify(handler, state)
	return nil
}

// Reset returns the stopwatch to Idle from any state
func (sw *Stopwatch) Reset() {
	sw.mu.Lock()
	sw.phase = models.StopwatchIdle
	sw.elapsed = 0
	sw.startedAt = time.Time{}
	stop, done := sw.detachTicker()
	state, handler := sw.stateLocked(), sw.onState
	sw.mu.Unlock()

	waitTicker(stop, done)
	notify(handler, state)
}

// Close cancels the display tick without changing the measured state
func (sw *Stopwatch) Close() {
	sw.mu.Lock()
	stop, done := sw.detachTicker()
	sw.mu.Unlock()

	waitTicker(stop, done)
}

// SampleElapsed returns the elapsed milliseconds at this instant
func (sw *Stopwatch) SampleElapsed() int64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.sampleLocked().Milliseconds()
}

// State returns a snapshot of the stopwatch
func (sw *Stopwatch) State() models.StopwatchState {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.stateLocked()
}

// IsRunning returns whether the stopwatch is currently running
func (sw *Stopwatch) IsRunning() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.phase == models.StopwatchRunning
}

// RecordAsInitial writes the current reading, in seconds, as Ti. The
// stopwatch keeps running.
func (sw *Stopwatch) RecordAsInitial() float64 {
	seconds := models.MillisToSeconds(sw.SampleElapsed())
	if sw.recorder != nil {
		sw.recorder.SetInitialTime(seconds)
	}
	return seconds
}

// RecordAsFinal writes the current reading, in seconds, as Tf. The
// stopwatch keeps running.
func (sw *Stopwatch) RecordAsFinal() float64 {
	seconds := models.MillisToSeconds(sw.SampleElapsed())
	if sw.recorder != nil {
		sw.recorder.SetFinalTime(seconds)
	}
	return seconds
}

func notify(handler func(models.StopwatchState), state models.StopwatchState) {
	if handler != nil {
		handler(state)
	}
}

func (sw *Stopwatch) sampleLocked() time.Duration {
	if sw.phase == models.StopwatchRunning {
		return sw.now().Sub(sw.startedAt)
	}
	return sw.elapsed
}

func (sw *Stopwatch) stateLocked() models.StopwatchState {
	elapsedMs := sw.sampleLocked().Milliseconds()
	state := models.StopwatchState{
		Phase:     sw.phase,
		ElapsedMs: elapsedMs,
		Running:   sw.phase == models.StopwatchRunning,
		Display:   models.FormatElapsed(elapsedMs),
	}
	if !sw.startedAt.IsZero() {
		state.StartEpochMs = sw.startedAt.UnixMilli()
	}
	return state
}

// startTicker must be called with mu held
func (sw *Stopwatch) startTicker() {
	stop := make(chan struct{})
	done := make(chan struct{})
	sw.stopChan = stop
	sw.doneChan = done

	go sw.run(time.NewTicker(sw.interval), stop, done)
}

// detachTicker must be called with mu held; the caller closes the returned
// channels with waitTicker after releasing mu
func (sw *Stopwatch) detachTicker() (chan struct{}, chan struct{}) {
	stop, done := sw.stopChan, sw.doneChan
	sw.stopChan = nil
	sw.doneChan = nil
	return stop, done
}

func waitTicker(stop, done chan struct{}) {
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// run is the display tick loop of one Running period
func (sw *Stopwatch) run(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.mu.Lock()
			if sw.stopChan != stop || sw.phase != models.StopwatchRunning {
				sw.mu.Unlock()
				return
			}
			state := sw.stateLocked()
			handler := sw.onTick
			sw.mu.Unlock()

			if handler != nil {
				handler(state)
			}
		case <-stop:
			return
		}
	}
}
