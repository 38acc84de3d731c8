package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/worker"
)

var (
	concurrency  int
	batchOutput  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify multiple claims from a file in parallel",
	Long: `Batch reads claims from a file (one per line, # comments skipped)
and verifies them concurrently. Per-claim failures are reported in the
output without aborting the batch.

Example:
  crisiswatch batch claims.txt
  crisiswatch batch claims.txt --concurrency 8 --output results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent checks")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write results as JSON to this file (default: stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

type batchOutcome struct {
	Claim  string                 `json:"claim"`
	Result *model.FactCheckResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, _, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	processor := worker.NewBatchProcessor(p, concurrency)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	results := make([]batchOutcome, 0, len(outcomes))
	failed := 0
	for _, outcome := range outcomes {
		entry := batchOutcome{Claim: outcome.Text, Result: outcome.Result}
		if outcome.Error != nil {
			entry.Error = outcome.Error.Error()
			failed++
		}
		results = append(results, entry)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	if batchOutput != "" {
		if err := os.WriteFile(batchOutput, data, 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d results to %s\n", len(results), batchOutput)
	} else {
		fmt.Println(string(data))
	}

	fmt.Fprintf(os.Stderr, "Checked %d claims, %d failed\n", len(results), failed)
	return nil
}
