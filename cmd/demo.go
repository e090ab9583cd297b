package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArseniyBeglov/corobus/internal/config"
	"github.com/ArseniyBeglov/corobus/internal/sim"
)

var demoScenario string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run one workload round and print the report",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&demoScenario, "scenario", "s", "", "Scenario YAML file (overrides config)")
}

func runDemo(_ *cobra.Command, _ []string) error {
	var topo sim.Topology
	if demoScenario != "" {
		sc, err := sim.LoadScenario(demoScenario)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		topo = sc.Topology()
	} else {
		cfg, err := config.Load(config.ConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		topo = sim.FromConfig(cfg.Demo)
	}

	fmt.Printf("%s Running workload %q...\n\n", logo, topo.Name)

	rep := sim.Run(topo)

	fmt.Printf("Topology:    %s\n", rep.Topology)
	fmt.Printf("Sent:        %d\n", rep.Sent)
	fmt.Printf("Received:    %d\n", rep.Received)
	fmt.Printf("Broadcasts:  %d", rep.Broadcasts)
	if rep.BroadcastFailures > 0 {
		fmt.Printf(" (%d failed)", rep.BroadcastFailures)
	}
	fmt.Println()
	fmt.Printf("Discarded:   %d\n", rep.Discarded)
	fmt.Printf("Deadlocked:  %d\n", rep.Deadlocked)

	if rep.Clean() {
		fmt.Println("\n✓ Clean round.")
		return nil
	}
	return fmt.Errorf("round finished with losses: %d discarded, %d deadlocked", rep.Discarded, rep.Deadlocked)
}
