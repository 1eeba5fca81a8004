package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gatelink/gatelink/internal/output"
	"github.com/gatelink/gatelink/internal/server/handlers"
)

var intervalsOutputFormat string

var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "Show per-operation pacing intervals from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(intervalsOutputFormat)
		if err != nil {
			return err
		}

		if format == output.FormatJSON || format == output.FormatYAML {
			return printStructured(cmd, "/intervals", format)
		}

		var resp handlers.IntervalsResponse
		if err := fetchServerJSON(cmd.Context(), "/intervals", &resp); err != nil {
			return err
		}

		ops := make([]string, 0, len(resp.Intervals))
		for op := range resp.Intervals {
			ops = append(ops, op)
		}
		sort.Strings(ops)

		rows := make([][]string, 0, len(ops)+1)
		rows = append(rows, []string{"(default)", strconv.FormatInt(resp.DefaultMs, 10)})
		for _, op := range ops {
			rows = append(rows, []string{op, strconv.FormatInt(resp.Intervals[op], 10)})
		}
		fmt.Println(output.RenderTable([]string{"Operation", "Interval (ms)"}, rows))
		return nil
	},
}

var requestsOutputFormat string

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Show per-operation call accounting from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(requestsOutputFormat)
		if err != nil {
			return err
		}

		if format == output.FormatJSON || format == output.FormatYAML {
			return printStructured(cmd, "/requests", format)
		}

		var resp handlers.RequestsResponse
		if err := fetchServerJSON(cmd.Context(), "/requests", &resp); err != nil {
			return err
		}

		if len(resp.Stats) == 0 {
			fmt.Println("(no calls recorded)")
			return nil
		}

		rows := make([][]string, len(resp.Stats))
		for i, s := range resp.Stats {
			suspended := ""
			if until, ok := resp.Suspended[s.Operation]; ok {
				suspended = "until " + until.UTC().Format("15:04:05")
			}
			rows[i] = []string{
				s.Operation,
				strconv.FormatInt(s.Successes, 10),
				strconv.FormatInt(s.Failures, 10),
				s.LastError,
				suspended,
			}
		}
		fmt.Println(output.RenderTable(
			[]string{"Operation", "Successes", "Failures", "Last Error", "Suspended"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(intervalsCmd)
	intervalsCmd.Flags().StringVar(&intervalsOutputFormat, "output-format", string(output.FormatTable), "Output format: table|json|yaml")

	rootCmd.AddCommand(requestsCmd)
	requestsCmd.Flags().StringVar(&requestsOutputFormat, "output-format", string(output.FormatTable), "Output format: table|json|yaml")
}
