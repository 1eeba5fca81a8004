package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatelink/gatelink/internal/bridge"
	"github.com/gatelink/gatelink/internal/observability"
	"github.com/gatelink/gatelink/internal/output"
)

var (
	callAttempts        int
	callRetryIntervalMs int
	callOutputFormat    string
	callOut             string
	callRaw             bool
)

var callCmd = &cobra.Command{
	Use:   "call <operation> [payload]",
	Short: "Execute one gateway operation",
	Long: `Execute one operation against the configured gateway, applying the
full call discipline: pacing, retry with backoff, and the offline breaker.

The payload defaults to an empty JSON object. A failed call prints nothing
with --raw and a failed row otherwise; the exit code stays zero because
call failure is an expected outcome, not a CLI error.

Examples:
  gatelink call query.balance
  gatelink call order.submit '{"id":42}' --attempts 5
  gatelink call query.balance --raw`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(callOutputFormat)
		if err != nil {
			return err
		}

		operation := args[0]
		payload := "{}"
		if len(args) == 2 {
			payload = args[1]
		}

		mgr, err := newManager(zap.NewNop())
		if err != nil {
			return err
		}

		start := time.Now()
		text := mgr.TextWith(cmd.Context(), operation, payload, callAttempts, callRetryIntervalMs)
		elapsed := time.Since(start)

		if verbose {
			observability.CLILogger.Debug("call finished",
				zap.String("operation", operation),
				zap.Bool("ok", text != ""),
				zap.Duration("elapsed", elapsed))
		}

		sink, err := openSink(callOut)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if callRaw {
			if text != "" {
				_, err = fmt.Fprintln(sink.writer, text)
			}
			return err
		}

		report := []output.CallReport{{
			Operation: operation,
			Payload:   payload,
			Response:  text,
			OK:        text != "",
			ElapsedMs: elapsed.Milliseconds(),
		}}

		rendered, err := output.FormatCallList(format, report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().IntVar(&callAttempts, "attempts", bridge.DefaultAttempts, "maximum invocation attempts")
	callCmd.Flags().IntVar(&callRetryIntervalMs, "retry-interval-ms", bridge.DefaultRetryIntervalMs, "base retry delay in milliseconds (-1 for default)")
	callCmd.Flags().StringVar(&callOutputFormat, "output-format", string(output.FormatTable), "Output format: table|json|yaml|markdown")
	callCmd.Flags().StringVar(&callOut, "out", "", "Write output to a file (default stdout)")
	callCmd.Flags().BoolVar(&callRaw, "raw", false, "Print the raw response text only")
}
