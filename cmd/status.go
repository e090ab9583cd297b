package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ArseniyBeglov/corobus/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corobus configuration",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s corobus Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗ (using defaults)"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:       %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Monitor port: %d\n", cfg.Serve.Port)
	fmt.Printf("Inject every: %s\n", cfg.Serve.InjectEvery)
	fmt.Printf("Push every:   %s\n\n", cfg.Serve.SnapshotEvery)

	fmt.Println("Workload:")
	fmt.Printf("  Channels:      %d (", len(cfg.Demo.Channels))
	for i, ch := range cfg.Demo.Channels {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("cap %d", ch.Capacity)
	}
	fmt.Println(")")
	fmt.Printf("  Producers:     %d × %d messages\n", cfg.Demo.Producers, cfg.Demo.MessagesPerProducer)
	fmt.Printf("  Consumers:     %d\n", cfg.Demo.Consumers)
	fmt.Printf("  Broadcasters:  %d\n", cfg.Demo.Broadcasters)
	if cfg.Demo.BatchSize > 1 {
		fmt.Printf("  Batch size:    %d\n", cfg.Demo.BatchSize)
	}
	return nil
}
