package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatelink/gatelink/internal/output"
	"github.com/gatelink/gatelink/internal/server/handlers"
)

var statusOutputFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine status from a running server",
	Long: `Query a running gatelink server for its engine state: binding
generation, offline breaker, and entity pool counters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(statusOutputFormat)
		if err != nil {
			return err
		}

		if format == output.FormatJSON || format == output.FormatYAML {
			return printStructured(cmd, "/status", format)
		}

		var status handlers.StatusResponse
		if err := fetchServerJSON(cmd.Context(), "/status", &status); err != nil {
			return err
		}

		offlineState := "online"
		if status.Offline.Offline {
			offlineState = fmt.Sprintf("offline until %s (%s)",
				status.Offline.Until.UTC().Format(time.RFC3339), status.Offline.Reason)
		}

		rows := [][]string{
			{"generation", status.Generation},
			{"binding", status.Binding},
			{"loaded", strconv.FormatBool(status.Loaded)},
			{"state", offlineState},
			{"offline_enters", strconv.FormatInt(status.Offline.Enters, 10)},
			{"offline_exits", strconv.FormatInt(status.Offline.Exits, 10)},
			{"pool", status.Pool.String()},
		}
		fmt.Println(output.RenderTable([]string{"Key", "Value"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusOutputFormat, "output-format", string(output.FormatTable), "Output format: table|json|yaml")
}
