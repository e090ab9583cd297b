package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative workload script, loadable from YAML so demo
// runs can be checked into a repo and replayed.
//
//	name: backpressure
//	channels:
//	  - capacity: 2
//	producers: 1
//	messagesPerProducer: 4
//	consumers: 1
type Scenario struct {
	Name                string `yaml:"name"`
	Channels            []struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"channels"`
	Producers           int `yaml:"producers"`
	MessagesPerProducer int `yaml:"messagesPerProducer"`
	Consumers           int `yaml:"consumers"`
	Broadcasters        int `yaml:"broadcasters"`
	BatchSize           int `yaml:"batchSize"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	if len(sc.Channels) == 0 {
		return nil, fmt.Errorf("scenario %s: channels must not be empty", path)
	}
	for i, ch := range sc.Channels {
		if ch.Capacity <= 0 {
			return nil, fmt.Errorf("scenario %s: channels[%d].capacity must be positive", path, i)
		}
	}
	return &sc, nil
}

// Topology converts the scenario into a runnable topology.
func (sc *Scenario) Topology() Topology {
	caps := make([]int, len(sc.Channels))
	for i, ch := range sc.Channels {
		caps[i] = ch.Capacity
	}
	return Topology{
		Name:         sc.Name,
		Capacities:   caps,
		Producers:    sc.Producers,
		Messages:     sc.MessagesPerProducer,
		Consumers:    sc.Consumers,
		Broadcasters: sc.Broadcasters,
		BatchSize:    sc.BatchSize,
	}
}
