package commands

import (
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Renders, uploads and mails today's menu.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(config, nil)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		err = a.runDaily(cmd.Context())
		if err != nil {
			serviceutil.Fatal("daily run failed", err)
		}
	},
}
