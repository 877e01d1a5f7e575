package commands

import (
	"firstscoop-backend/internal/unsubscribe"
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().Int("port", 0, "The port to listen on, defaults to unsubscribe.port.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves the unsubscribe page.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(config, nil)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		sheet, err := a.sheet(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to open subscriber sheet", err)
		}

		port := *servePort
		if port == 0 {
			port = config.Unsubscribe.Port
		}
		handler := unsubscribe.NewHandler(sheet, a.tel)
		err = serviceutil.StartHttpServer(cmd.Context(), port, handler.Mux())
		if err != nil {
			serviceutil.Fatal("http server stopped", err)
		}
	},
}
