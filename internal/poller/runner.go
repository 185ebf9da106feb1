// internal/poller/runner.go
package poller

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"
)

// Run polls forever: one cycle, then a pause of Interval, and again.
// A cycle that panics is logged and the loop carries on.
// Run returns ErrErrorBudgetExceeded or the context error.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := p.runCycle(ctx); err != nil {
			return err
		}
		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			return err
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			klog.ErrorS(fmt.Errorf("%v", r), "poll cycle aborted")
			err = nil
		}
	}()

	return p.PollCycle(ctx)
}
