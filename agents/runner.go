package agents

import (
	"context"
)

// MaxParallelFrameworks caps concurrent framework executions.
const MaxParallelFrameworks = 5

// Runner executes several frameworks concurrently with cooperative
// cancellation.
type Runner struct {
	executor   *FrameworkExecutor
	maxWorkers int
}

func NewRunner(executor *FrameworkExecutor) *Runner {
	return &Runner{executor: executor, maxWorkers: MaxParallelFrameworks}
}

// ExecuteParallel runs every framework id concurrently, at most maxWorkers at
// a time, and collects results in completion order. A framework that cannot
// execute contributes an error placeholder rather than sinking the batch.
// When ctx is cancelled mid-run the completed subset is returned with Partial
// set; abandoned goroutines drain into the buffered channel and exit.
func (r *Runner) ExecuteParallel(ctx context.Context, frameworkIDs []string, pyramid *PyramidAnalysis, conversation []Message, ui *UIState) *BatchResult {
	if len(frameworkIDs) == 0 {
		return &BatchResult{Results: []FrameworkResult{}}
	}

	results := make(chan FrameworkResult, len(frameworkIDs))
	sem := make(chan struct{}, r.maxWorkers)

	for _, id := range frameworkIDs {
		go func(frameworkID string) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- FrameworkResult{FrameworkID: frameworkID, Error: ctx.Err().Error()}
				return
			}

			result, err := r.executor.Execute(ctx, frameworkID, pyramid, conversation, ui)
			if err != nil {
				results <- FrameworkResult{FrameworkID: frameworkID, Error: err.Error()}
				return
			}
			results <- *result
		}(id)
	}

	batch := &BatchResult{Results: make([]FrameworkResult, 0, len(frameworkIDs))}
	for i := 0; i < len(frameworkIDs); i++ {
		select {
		case result := <-results:
			batch.Results = append(batch.Results, result)
		case <-ctx.Done():
			batch.Partial = true
			return batch
		}
	}
	return batch
}
