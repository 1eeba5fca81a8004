package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gatelink/gatelink/internal/bridge/requests"
	"github.com/gatelink/gatelink/internal/observability"
	"github.com/gatelink/gatelink/internal/output"
)

var (
	batchLimit        int
	batchOutputFormat string
	batchOut          string
)

// batchEntry is one call in the batch input file.
type batchEntry struct {
	Operation       string `json:"operation" yaml:"operation"`
	Payload         string `json:"payload" yaml:"payload"`
	Attempts        int    `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	RetryIntervalMs int    `json:"retry_interval_ms,omitempty" yaml:"retry_interval_ms,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Execute a batch of gateway operations",
	Long: `Execute a batch of calls concurrently, bounded by --limit.
Results come back in input order. The input is a JSON array, or a YAML list
when the file ends in .yaml/.yml. Use "-" to read JSON from stdin.

Input format:
  [{"operation": "query.balance", "payload": "{}"},
   {"operation": "order.submit", "payload": "{\"id\":42}", "attempts": 5}]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(batchOutputFormat)
		if err != nil {
			return err
		}

		entries, err := readBatchFile(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("batch input is empty")
		}

		calls := make([]requests.Call, len(entries))
		for i, e := range entries {
			if e.Operation == "" {
				return fmt.Errorf("batch entry %d: operation required", i)
			}
			payload := e.Payload
			if payload == "" {
				payload = "{}"
			}
			calls[i] = requests.Call{
				Operation:       e.Operation,
				Payload:         payload,
				Attempts:        e.Attempts,
				RetryIntervalMs: e.RetryIntervalMs,
			}
		}

		mgr, err := newManager(zap.NewNop())
		if err != nil {
			return err
		}

		start := time.Now()
		results := mgr.Batch(cmd.Context(), calls, batchLimit)
		elapsed := time.Since(start)

		if verbose {
			observability.CLILogger.Debug("batch finished",
				zap.Int("calls", len(results)),
				zap.Duration("elapsed", elapsed))
		}

		reports := make([]output.CallReport, len(results))
		for i, r := range results {
			reports[i] = output.CallReport{
				Operation: r.Call.Operation,
				Payload:   r.Call.Payload,
				Response:  r.Text,
				OK:        r.Text != "",
			}
		}

		sink, err := openSink(batchOut)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.FormatCallList(format, reports)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

// readBatchFile loads batch entries from a JSON or YAML file, sniffed by
// extension. Stdin ("-") is always JSON.
func readBatchFile(path string) ([]batchEntry, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close() // nolint:errcheck // read-only handle
		reader = file
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read batch input: %w", err)
	}

	var entries []batchEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse batch input: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse batch input: %w", err)
		}
	}
	return entries, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchLimit, "limit", 4, "maximum concurrent calls")
	batchCmd.Flags().StringVar(&batchOutputFormat, "output-format", string(output.FormatTable), "Output format: table|json|yaml|markdown")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "Write output to a file (default stdout)")
}
