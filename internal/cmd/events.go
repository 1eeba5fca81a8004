package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatelink/gatelink/internal/output"
	"github.com/gatelink/gatelink/internal/server/handlers"
)

var eventsOutputFormat string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show offline breaker transitions from a running server",
	Long: `Query a running gatelink server for its bounded offline transition
log, oldest first. The log records enter, refresh, exit, and automatic exit
transitions with the reason that opened the breaker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(eventsOutputFormat)
		if err != nil {
			return err
		}

		if format == output.FormatJSON || format == output.FormatYAML {
			return printStructured(cmd, "/events", format)
		}

		var resp handlers.EventsResponse
		if err := fetchServerJSON(cmd.Context(), "/events", &resp); err != nil {
			return err
		}

		if len(resp.Events) == 0 {
			fmt.Println("(no offline transitions recorded)")
			return nil
		}

		rows := make([][]string, len(resp.Events))
		for i, e := range resp.Events {
			rows[i] = []string{
				e.At.UTC().Format(time.RFC3339),
				string(e.Type),
				e.Reason,
				e.Detail,
			}
		}
		fmt.Println(output.RenderTable([]string{"At", "Type", "Reason", "Detail"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().StringVar(&eventsOutputFormat, "output-format", string(output.FormatTable), "Output format: table|json|yaml")
}
