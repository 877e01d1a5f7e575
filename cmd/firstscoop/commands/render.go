package commands

import (
	"time"

	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	renderOut      *string
	renderNoUpload *bool
	renderDate     *string
)

func init() {
	renderOut = renderCmd.Flags().String("out", "", "Where to write the document, defaults to output.file.")
	renderNoUpload = renderCmd.Flags().Bool("no-upload", false, "Only write the document locally.")
	renderDate = renderCmd.Flags().String("date", "", "Render the menu of another day of the current week (YYYY-MM-DD).")
	rootCmd.AddCommand(renderCmd)
}

// clockFor returns a fixed clock for a YYYY-MM-DD date flag, or nil for the real clock.
func clockFor(date, location string) (chrono.TimeAPI, error) {
	if date == "" {
		return nil, nil
	}
	standard, err := chrono.NewStandardTime(location)
	if err != nil {
		return nil, err
	}
	at, err := time.ParseInLocation("2006-01-02", date, standard.Location())
	if err != nil {
		return nil, err
	}
	return chrono.FixedTime{At: at.Add(12 * time.Hour)}, nil
}

var renderCmd = &cobra.Command{
	Use:   "render [--out <path>] [--no-upload] [--date <YYYY-MM-DD>]",
	Short: "Scrapes today's menu and writes (and uploads) the rendered document.",
	Run: func(cmd *cobra.Command, args []string) {
		clock, err := clockFor(*renderDate, config.Site.Location)
		if err != nil {
			serviceutil.Fatal("invalid --date", err)
		}
		a, err := newApp(config, clock)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		out := *renderOut
		if out == "" {
			out = config.Output.File
		}

		runId := a.startRun(cmd.Context())
		_, err = a.renderMenu(cmd.Context(), runId, out, !*renderNoUpload)
		if err != nil {
			serviceutil.Fatal("failed to render menu", err)
		}
	},
}
