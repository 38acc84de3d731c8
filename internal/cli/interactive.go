package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crisiswatch/crisiswatch/internal/pipeline"
)

// interactiveCmd represents the interactive command
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Check claims in a read-eval loop",
	Long: `Interactive mode accepts claim text line by line and prints each
verdict. The result cache and trending store persist across checks in
the session. Enter "exit" or "quit" (or Ctrl-D) to leave.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
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

	fmt.Println("CrisisWatch interactive mode. Enter a claim, or \"exit\" to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for {
		fmt.Print("claim> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		result, err := p.Check(context.Background(), line, nil)
		if err != nil {
			var validationErr *pipeline.ValidationError
			if errors.As(err, &validationErr) {
				fmt.Printf("  %v\n", validationErr)
				continue
			}
			fmt.Printf("  check failed: %v\n", err)
			continue
		}

		printResult(result)
	}
}
