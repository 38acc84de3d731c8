package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// Checker verifies one claim end to end
type Checker interface {
	CheckClaim(ctx context.Context, text string) (*model.FactCheckResult, error)
}

// CheckJob wraps one claim for pool execution
type CheckJob struct {
	Text    string
	Checker Checker
}

// Execute runs the claim through the checker
func (j *CheckJob) Execute(ctx context.Context) Result {
	result, err := j.Checker.CheckClaim(ctx, j.Text)
	return &CheckOutcome{
		Text:   j.Text,
		Result: result,
		Error:  err,
	}
}

// CheckOutcome pairs a claim with its verification result or failure
type CheckOutcome struct {
	Text   string
	Result *model.FactCheckResult
	Error  error
}

// GetError returns the job error, if any
func (o *CheckOutcome) GetError() error {
	return o.Error
}

// BatchProcessor verifies many claims concurrently. Per-claim failures are
// reported in the outcome, never propagated as a batch failure.
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessClaims runs every claim through the checker on a worker pool
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*CheckOutcome {
	if len(claims) == 0 {
		return []*CheckOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, text := range claims {
		pool.Submit(&CheckJob{
			Text:    text,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	outcomes := make([]*CheckOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*CheckOutcome)
	}

	return outcomes
}

// ProcessFile reads claims from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckOutcome, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads one claim per line, skipping blanks, comments,
// and exact duplicates.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
