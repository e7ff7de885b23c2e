package action

import (
	"errors"
	"sync"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/tools"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PressHook observes successful identity resolutions, e.g. for an
// external event publisher. It runs on the execution goroutine.
type PressHook func(id Identity, b Binding)

// Dispatcher resolves input identities and executes their actions.
// Dispatch returns immediately; execution runs on its own goroutine so a
// hanging action can never stall subsequent input events.
type Dispatcher struct {
	runner        tools.CommandRunner
	launcher      tools.Launcher
	injector      *KeyInjector
	records       *RecordLog
	actionLogPath string
	onPress       PressHook
	log           zerolog.Logger

	mu    sync.RWMutex
	table *Table

	wg sync.WaitGroup
}

// NewDispatcher builds a dispatcher with an empty table.
func NewDispatcher(runner tools.CommandRunner, launcher tools.Launcher, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		runner:   runner,
		launcher: launcher,
		injector: NewKeyInjector(runner),
		records:  NewRecordLog(),
		log:      logger,
	}
}

// WithActionLog sets the file detached action output is captured to.
func (d *Dispatcher) WithActionLog(path string) *Dispatcher {
	d.actionLogPath = path
	return d
}

// WithPressHook installs an observer for resolved presses.
func (d *Dispatcher) WithPressHook(h PressHook) *Dispatcher {
	d.onPress = h
	return d
}

// Records exposes the execution history.
func (d *Dispatcher) Records() *RecordLog { return d.records }

// ReloadTable swaps the binding table wholesale.
func (d *Dispatcher) ReloadTable(t *Table) {
	d.mu.Lock()
	d.table = t
	d.mu.Unlock()
	d.log.Info().Int("bindings", t.Len()).Msg("binding table loaded")
}

// Table returns the current binding table.
func (d *Dispatcher) Table() *Table {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table
}

// Dispatch resolves one identity and schedules its action. An identity
// with no binding is logged and dropped; nothing is surfaced upstream,
// matching the system rule that a missing binding means the press simply
// does nothing.
func (d *Dispatcher) Dispatch(id Identity) {
	b, ok := d.Table().Resolve(id)
	if !ok {
		observability.RecordDispatch("none", OutcomeUnbound)
		d.log.Info().Str("identity", id.String()).Msg("no binding, dropped")
		return
	}
	rec := Record{
		ID:        uuid.NewString(),
		Identity:  id.String(),
		Action:    b.Action,
		StartedAt: time.Now(),
	}
	d.wg.Add(1)
	go d.execute(rec, id, b)
}

func (d *Dispatcher) execute(rec Record, id Identity, b Binding) {
	defer d.wg.Done()
	err := d.run(b)
	rec.FinishedAt = time.Now()
	switch {
	case err == nil:
		rec.Outcome = OutcomeCompleted
	case errors.Is(err, ErrSudoBlocked):
		rec.Outcome = OutcomeBlocked
		rec.Detail = err.Error()
	default:
		rec.Outcome = OutcomeFailed
		rec.Detail = err.Error()
		d.log.Warn().Err(err).Str("identity", rec.Identity).Str("action", string(b.Action)).Msg("action failed")
	}
	d.records.Add(rec)
	observability.RecordDispatch(string(b.Action), rec.Outcome)
	if err == nil && d.onPress != nil {
		d.onPress(id, b)
	}
}

func (d *Dispatcher) run(b Binding) error {
	switch b.Action {
	case TypeKey:
		return d.injector.PressChord(b.Modifiers, b.Key)
	case TypeMedia:
		return d.injector.ConsumerKey(b.MediaKey)
	case TypeLaunch:
		return d.executeLaunch(b)
	case TypeShell:
		return d.executeShell(b)
	case TypeURL:
		return d.executeURL(b)
	default:
		return ErrUnknownAction
	}
}

// DispatchLegacyKeystroke executes the legacy direct-keystroke message.
func (d *Dispatcher) DispatchLegacyKeystroke(modifiers, key uint8) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.injector.LegacyChord(modifiers, key); err != nil {
			observability.RecordDispatch("legacy_key", OutcomeFailed)
			d.log.Warn().Err(err).Msg("legacy keystroke failed")
			return
		}
		observability.RecordDispatch("legacy_key", OutcomeCompleted)
	}()
}

// DispatchLegacyMediaKey executes the legacy consumer-control message.
func (d *Dispatcher) DispatchLegacyMediaKey(code uint8) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.injector.ConsumerKeyCode(code); err != nil {
			observability.RecordDispatch("legacy_media", OutcomeFailed)
			d.log.Warn().Err(err).Msg("legacy media key failed")
			return
		}
		observability.RecordDispatch("legacy_media", OutcomeCompleted)
	}()
}

// Wait blocks until in-flight actions finish. Tests use this; the daemon
// never waits on actions.
func (d *Dispatcher) Wait() { d.wg.Wait() }
