package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"firstscoop-backend/internal/menu"
	"firstscoop-backend/internal/pipeline"
	"firstscoop-backend/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	previewDate *string
	previewDump *string
)

func init() {
	previewDate = previewCmd.Flags().String("date", "", "Preview another day of the current week (YYYY-MM-DD).")
	previewDump = previewCmd.Flags().String("dump", "", "Write every fetched page into this directory.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [--date <YYYY-MM-DD>] [--dump <dir>]",
	Short: "Prints today's menu as tables without writing or sending anything.",
	Run: func(cmd *cobra.Command, args []string) {
		clock, err := clockFor(*previewDate, config.Site.Location)
		if err != nil {
			serviceutil.Fatal("invalid --date", err)
		}
		previewConfig := config
		if *previewDump != "" {
			previewConfig.Site.DumpDir = *previewDump
		}
		a, err := newApp(previewConfig, clock)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		p, err := a.pipeline()
		if err != nil {
			serviceutil.Fatal("failed to create pipeline", err)
		}
		result, err := p.Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to scrape menu", err)
		}
		printPreview(os.Stdout, result)
	},
}

func printPreview(w io.Writer, result pipeline.Result) {
	fmt.Fprintln(w, result.Date.HeaderDate())
	for _, resolved := range result.Resolved {
		fmt.Fprintf(w, "%s: menu %s\n", resolved.Category.Label, resolved.NumericID)
	}

	for _, period := range menu.RenderOrder {
		records := result.Sections[period]
		if len(records) == 0 {
			continue
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(string(period))
		t.AppendHeader(table.Row{"Name", "Calories", "Carbs (g)", "Protein (g)", "Fat (g)", "Allergens"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.Name,
				r.Calories.Or("n/a"),
				r.Carbs.Or("n/a"),
				r.Protein.Or("n/a"),
				r.Fat.Or("n/a"),
				strings.Join(r.Allergens, ", "),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}
}
