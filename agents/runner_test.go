package agents

import (
	"context"
	"testing"
	"time"

	"problem-navigator/catalog"
)

func TestExecuteParallel(t *testing.T) {
	client := &fakeClient{responses: []string{executorResponse}}
	runner := NewRunner(NewFrameworkExecutor(client, catalog.Default()))

	ids := []string{"root_cause_analysis", "stakeholder_mapping", "scenario_planning"}
	batch := runner.ExecuteParallel(context.Background(), ids, defaultPyramid(), sampleConversation(), nil)

	if batch.Partial {
		t.Error("expected complete batch")
	}
	if len(batch.Results) != len(ids) {
		t.Fatalf("got %d results, want %d", len(batch.Results), len(ids))
	}
	got := make(map[string]bool)
	for _, result := range batch.Results {
		got[result.FrameworkID] = true
	}
	for _, id := range ids {
		if !got[id] {
			t.Errorf("missing result for %s", id)
		}
	}
}

func TestExecuteParallelEmpty(t *testing.T) {
	runner := NewRunner(NewFrameworkExecutor(&fakeClient{}, catalog.Default()))

	batch := runner.ExecuteParallel(context.Background(), nil, defaultPyramid(), nil, nil)
	if batch.Partial || len(batch.Results) != 0 {
		t.Errorf("empty input should yield empty complete batch, got %+v", batch)
	}
}

func TestExecuteParallelUnknownID(t *testing.T) {
	client := &fakeClient{responses: []string{executorResponse}}
	runner := NewRunner(NewFrameworkExecutor(client, catalog.Default()))

	batch := runner.ExecuteParallel(context.Background(),
		[]string{"root_cause_analysis", "no_such_framework"}, defaultPyramid(), sampleConversation(), nil)

	if len(batch.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(batch.Results))
	}
	var placeholder *FrameworkResult
	for i := range batch.Results {
		if batch.Results[i].FrameworkID == "no_such_framework" {
			placeholder = &batch.Results[i]
		}
	}
	if placeholder == nil {
		t.Fatal("missing placeholder for unknown framework")
	}
	if placeholder.Error == "" || placeholder.Analysis != nil {
		t.Errorf("placeholder = %+v, want error-only result", placeholder)
	}
}

func TestExecuteParallelCancellation(t *testing.T) {
	client := newStuckClient()
	defer close(client.release)
	runner := NewRunner(NewFrameworkExecutor(client, catalog.Default()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan *BatchResult, 1)
	go func() {
		done <- runner.ExecuteParallel(ctx,
			[]string{"root_cause_analysis", "stakeholder_mapping"}, defaultPyramid(), sampleConversation(), nil)
	}()

	select {
	case batch := <-done:
		if !batch.Partial {
			t.Error("expected partial batch after cancellation")
		}
		if len(batch.Results) >= 2 {
			t.Errorf("got %d results, want fewer than requested", len(batch.Results))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ExecuteParallel did not return after cancellation")
	}
}
