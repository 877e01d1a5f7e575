package commands

import (
	"firstscoop-backend/internal/storage"
	"firstscoop-backend/internal/subscribers"
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	sendFile *string
	sendTo   *string
)

func init() {
	sendFile = sendCmd.Flags().String("file", "", "The rendered document to send, defaults to output.file.")
	sendTo = sendCmd.Flags().String("to", "", "Comma separated recipients to send to instead of the subscriber sheet.")
	rootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send [--file <path>] [--to <a@x.com,b@x.com>]",
	Short: "Mails a rendered document to every subscriber.",
	Run: func(cmd *cobra.Command, args []string) {
		file := *sendFile
		if file == "" {
			file = config.Output.File
		}
		html, err := storage.ReadFile(file)
		if err != nil {
			serviceutil.Fatal("failed to read rendered menu", err)
		}

		a, err := newApp(config, nil)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		var source subscribers.Source
		if *sendTo != "" {
			source = subscribers.ParseEmails(*sendTo)
		} else {
			source, err = a.sheet(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to open subscriber sheet", err)
			}
		}

		runId := a.startRun(cmd.Context())
		_, err = a.sendMenu(cmd.Context(), runId, html, source)
		if err != nil {
			serviceutil.Fatal("failed to send menu", err)
		}
	},
}
