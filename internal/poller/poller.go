// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"k8s.io/klog/v2"
)

// Config is the runtime config the poller needs.
type Config struct {
	// Units are polled in this order, once per cycle.
	Units []uint8

	// Interval is the pause after a full round of units.
	Interval time.Duration

	// RequestDelay is the device turnaround pause between identity and telemetry reads.
	RequestDelay time.Duration

	// ErrorBudget is the number of consecutive failures tolerated.
	ErrorBudget uint
}

// Poller drives the round-robin poll of every configured unit.
type Poller struct {
	cfg     Config
	state   *State
	session *Session
	pub     Publisher
	rec     Recorder

	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Poller.
type Option func(*Poller)

// WithRecorder reports poll outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(p *Poller) {
		if r != nil {
			p.rec = r
		}
	}
}

// New creates a poller with immutable config.
func New(cfg Config, client Client, pub Publisher, opts ...Option) (*Poller, error) {
	if len(cfg.Units) == 0 {
		return nil, errors.New("poller: at least one unit required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.RequestDelay < 0 {
		return nil, errors.New("poller: request delay must be >= 0")
	}
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if pub == nil {
		return nil, errors.New("poller: publisher required")
	}

	state := NewState(cfg.ErrorBudget)
	p := &Poller{
		cfg:     cfg,
		state:   state,
		session: NewSession(client, state),
		pub:     pub,
		rec:     nopRecorder{},
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// State exposes the poll state. Callers must not use it concurrently with Run.
func (p *Poller) State() *State {
	return p.state
}

// PollCycle visits every unit once.
// Per-unit failures are counted, not returned. The only errors are
// ErrErrorBudgetExceeded and context cancellation.
func (p *Poller) PollCycle(ctx context.Context) error {
	p.rec.ObserveCycle()

	for _, unit := range p.cfg.Units {
		if err := ctx.Err(); err != nil {
			return err
		}

		klog.V(2).Infof("query: %d", unit)

		if _, ok := p.state.Serial(unit); !ok {
			sn, err := p.session.ResolveIdentity(unit)
			if err != nil {
				if p.failure(unit, OpIdentity, err) {
					return ErrErrorBudgetExceeded
				}
				continue
			}
			klog.V(2).Infof("[%s]", sn)
			p.success()
		}

		if err := p.sleep(ctx, p.cfg.RequestDelay); err != nil {
			return err
		}

		sn, _ := p.state.Serial(unit)

		snap, err := p.session.FetchSnapshot(unit)
		if err != nil {
			if p.failure(unit, OpSnapshot, err) {
				return ErrErrorBudgetExceeded
			}
			continue
		}
		klog.V(2).Infof("unit %d: %v", unit, snap)

		p.pub.PublishSnapshot(sn, snap)
		p.rec.ObservePublish(unit)
		p.success()
	}

	return nil
}

func (p *Poller) success() {
	p.state.Success()
	p.rec.SetErrorCount(0)
}

// failure counts err and reports whether the error budget is spent.
func (p *Poller) failure(unit uint8, op string, err error) bool {
	n := p.state.Failure()
	p.rec.ObserveFailure(unit, op)
	p.rec.SetErrorCount(n)

	klog.Warningf("unit %d: %s failed (errors=%d): %v", unit, op, n, err)

	return p.state.Exhausted()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
