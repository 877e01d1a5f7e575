package commands

import (
	"context"
	"log/slog"
	"time"

	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Runs the daily render and send on the configured cron schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		a, err := newApp(config, nil)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		telemetry.InstrumentPerfStats(ctx, a.tel)

		cronner := chrono.NewStandardCron(a.clock.Location(), a.tel)
		err = cronner.Cron(config.Schedule, func() {
			// a daily run never outlives the next one
			runCtx, cancel := context.WithTimeout(ctx, 6*time.Hour)
			defer cancel()

			err := a.runDaily(runCtx)
			if err != nil {
				a.tel.ReportBroken("daemon.run", err)
			}
		})
		if err != nil {
			serviceutil.Fatal("invalid schedule", err)
		}
		slog.Info("scheduled daily run", "schedule", config.Schedule, "location", a.clock.Location().String())

		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cronner.Stop(stopCtx)
	},
}
