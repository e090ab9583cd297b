// Package container wires the corobus tooling services using go.uber.org/dig.
package container

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/dig"

	"github.com/ArseniyBeglov/corobus/internal/config"
	"github.com/ArseniyBeglov/corobus/internal/monitor"
	"github.com/ArseniyBeglov/corobus/internal/sim"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg      *config.Config
	workload *sim.Service
	monitor  *monitor.Server
}

func (c *Container) Config() *config.Config    { return c.cfg }
func (c *Container) Workload() *sim.Service    { return c.workload }
func (c *Container) Monitor() *monitor.Server  { return c.monitor }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(newTopology); err != nil {
		return nil, err
	}
	if err := d.Provide(sim.NewService); err != nil {
		return nil, err
	}
	if err := d.Provide(newMonitorServer); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		cfg *config.Config,
		workload *sim.Service,
		mon *monitor.Server,
	) {
		result = &Container{
			cfg:      cfg,
			workload: workload,
			monitor:  mon,
		}
	})
	return result, err
}

func newTopology(cfg *config.Config) sim.Topology {
	return sim.FromConfig(cfg.Demo)
}

func newMonitorServer(cfg *config.Config, workload *sim.Service) *monitor.Server {
	var interval time.Duration
	if spec := cfg.Serve.SnapshotEvery; spec != "" {
		if sched, err := cron.ParseStandard(spec); err == nil {
			now := time.Now()
			interval = sched.Next(now).Sub(now)
		}
	}
	return monitor.NewServer(cfg.Serve.Port, workload, interval)
}
