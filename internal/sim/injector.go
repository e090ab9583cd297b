package sim

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Injector fires workload rounds on a cron schedule in serve mode.
// A tick that arrives while a round is still pending is dropped rather
// than queued, so a slow round cannot build a backlog.
type Injector struct {
	c    *cron.Cron
	fire chan struct{}
}

// NewInjector creates an injector from a robfig/cron schedule spec
// ("@every 10s", "*/5 * * * *", ...).
func NewInjector(spec string) (*Injector, error) {
	inj := &Injector{
		c:    cron.New(),
		fire: make(chan struct{}, 1),
	}
	if _, err := inj.c.AddFunc(spec, func() {
		select {
		case inj.fire <- struct{}{}:
		default:
		}
	}); err != nil {
		return nil, fmt.Errorf("injector schedule %q: %w", spec, err)
	}
	return inj, nil
}

// Start arms the schedule.
func (i *Injector) Start() { i.c.Start() }

// Stop disarms the schedule; a pending tick stays readable.
func (i *Injector) Stop() { i.c.Stop() }

// C returns the tick channel.
func (i *Injector) C() <-chan struct{} { return i.fire }
