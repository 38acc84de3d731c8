package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/pipeline"
)

var (
	outputJSON   bool
	noCache      bool
	checkTimeout time.Duration
	llmProvider  string
	llmModel     string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim text>",
	Short: "Verify a single claim",
	Long: `Check runs one claim through the full verification pipeline:
- Extract the verifiable assertion and crisis category
- Gather evidence concurrently from all configured sources
- Synthesize a verdict with confidence
- Rank severity and explain the result in English and Hindi

Example:
  crisiswatch check "Drinking hot water with lemon cures COVID-19"
  crisiswatch check --json "The dam upstream has collapsed"
  crisiswatch check --llm-provider ollama --llm-model llama3 "..."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&outputJSON, "json", false, "print the result as JSON")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache (force a fresh check)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "language model provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "language model name")
}

func runCheck(cmd *cobra.Command, args []string) error {
	claimText := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCheckFlags(&cfg)

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, _, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	var sink pipeline.EventSink
	if verbose && !outputJSON {
		sink = func(ev pipeline.Event) {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", ev.State, ev.Message)
		}
	}

	result, err := p.Check(ctx, claimText, sink)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(result)
	}
	printResult(result)
	return nil
}

func applyCheckFlags(cfg *model.Config) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Pipeline.Budget = checkTimeout
	applyEnv(cfg)
}

func printJSON(result *model.FactCheckResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printResult(result *model.FactCheckResult) {
	fmt.Println()
	fmt.Printf("Claim:       %s\n", result.Claim.Text)
	fmt.Printf("Category:    %s\n", result.Claim.Category)
	fmt.Printf("Verdict:     %s (confidence %.0f%%)\n", strings.ToUpper(strings.ReplaceAll(string(result.Verdict), "_", " ")), result.Confidence*100)
	fmt.Printf("Severity:    %s\n", result.Severity)
	if result.Cached {
		fmt.Printf("Source:      cache\n")
	}
	fmt.Println()
	fmt.Printf("%s\n", result.ExplanationEn)
	if result.ExplanationHi != "" {
		fmt.Println()
		fmt.Printf("%s\n", result.ExplanationHi)
	}
	if result.Correction != "" {
		fmt.Println()
		fmt.Printf("Correction:  %s\n", result.Correction)
	}
	if len(result.Evidence) > 0 {
		fmt.Println()
		fmt.Printf("Sources (%d consulted, %d items):\n", result.SourcesChecked, len(result.Evidence))
		for i, item := range result.Evidence {
			if i >= 5 {
				fmt.Printf("  … and %d more\n", len(result.Evidence)-i)
				break
			}
			fmt.Printf("  - [%s] %s\n    %s\n", item.Stance, item.Title, item.URL)
		}
	}
	fmt.Println()
	fmt.Printf("Checked in %dms\n", result.ProcessingTimeMS)
}
