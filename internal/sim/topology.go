// Package sim drives synthetic producer/consumer/broadcaster workloads
// against a corobus instance and reports what happened. It backs the
// `demo` and `serve` CLI commands and doubles as an executable example of
// the bus's blocking semantics.
package sim

import "github.com/ArseniyBeglov/corobus/internal/config"

// Topology describes one workload round.
type Topology struct {
	Name         string
	Capacities   []int
	Producers    int
	Messages     int // per producer
	Consumers    int
	Broadcasters int
	BatchSize    int
}

// FromConfig builds a Topology from the demo section of the config.
func FromConfig(demo config.DemoConfig) Topology {
	caps := make([]int, len(demo.Channels))
	for i, ch := range demo.Channels {
		caps[i] = ch.Capacity
	}
	return Topology{
		Name:         "config",
		Capacities:   caps,
		Producers:    demo.Producers,
		Messages:     demo.MessagesPerProducer,
		Consumers:    demo.Consumers,
		Broadcasters: demo.Broadcasters,
		BatchSize:    demo.BatchSize,
	}
}

// TotalExpected returns how many payloads a clean round should deliver:
// every produced message plus one broadcast copy per channel.
func (t Topology) TotalExpected() int {
	return t.Producers*t.Messages + t.Broadcasters*len(t.Capacities)
}
