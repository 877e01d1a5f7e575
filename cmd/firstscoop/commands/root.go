package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/lib/configutil"
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

const defaultConfigName = "firstscoop.json5"

var (
	configPath *string
	verbose    *bool

	config Config
	otel   telemetry.Otel
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", defaultConfigName, "The json5 config file, `<name>.local.json5` is merged on top of it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logs.")
}

var rootCmd = &cobra.Command{
	Use:   "firstscoop",
	Short: "firstscoop scrapes the dining hall menu and mails it to subscribers.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		var err error
		if *configPath == defaultConfigName {
			config, err = configutil.ReadRecursively[Config](defaultConfigName)
		} else {
			config, err = configutil.ReadConfig[Config](*configPath)
		}
		if os.IsNotExist(err) {
			slog.Warn("no config file found, using defaults", "config", *configPath)
			err = nil
		}
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		config = config.withDefaults()

		otel, err = telemetry.SetupOtel(cmd.Context(), "firstscoop", config.Otlp)
		if err != nil {
			serviceutil.Fatal("failed to setup otel", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
