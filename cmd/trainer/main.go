// trainer runs the vishing-defense call simulator.
//
// Usage:
//
//	trainer play  [--config trainer.yaml] [--backend gemini|grpc|fixture] [--fixture call.yaml] [--db calls.db]
//	trainer serve [--config trainer.yaml] [--addr :8080]
//	trainer replay script.yaml [--json] [--db calls.db]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/config"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "Practice spotting phone scams against generated callers",
	Long: "trainer rings you with a generated caller, either a scammer or a genuine\n" +
		"one, and scores how you handle the next few exchanges.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		applyFlagOverrides(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("TRAINER_CONFIG"), "path to YAML config")
	rootCmd.PersistentFlags().String("backend", "", "caller backend: gemini, grpc or fixture")
	rootCmd.PersistentFlags().String("fixture", "", "scripted caller file for the fixture backend")
	rootCmd.PersistentFlags().String("db", "", "call ledger path (empty disables recording)")
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.Version = version
}

// applyFlagOverrides lets explicit flags win over file and environment.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("backend"); v != "" {
		cfg.Caller.Backend = config.Backend(v)
	}
	if v, _ := flags.GetString("fixture"); v != "" {
		cfg.Caller.FixturePath = v
		if !flags.Changed("backend") {
			cfg.Caller.Backend = config.BackendFixture
		}
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.HTTPAddr = f.Value.String()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
