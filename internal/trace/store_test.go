package trace

import (
	"context"
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for epoch := 1; epoch <= 3; epoch++ {
		err := s.Append(ctx, Entry{
			JobID:   "job-a",
			JobType: "train",
			Event:   "epoch_completed",
			Scope:   ScopeEpoch,
			Epoch:   epoch,
			Metrics: map[string]float64{"avg_loss": 2.0 / float64(epoch)},
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := s.Entries(ctx, "job-a")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[2].Epoch != 3 || entries[2].Metrics["avg_loss"] == 0 {
		t.Errorf("unexpected entry: %+v", entries[2])
	}
	if entries[0].Time.IsZero() {
		t.Error("stored entry lost its timestamp")
	}
}

func TestEpochEntriesFiltersScopeAndEvent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seed := []Entry{
		{JobID: "j", Event: "batch_completed", Scope: ScopeBatch, Epoch: 1, Batch: 7},
		{JobID: "j", Event: "epoch_completed", Scope: ScopeEpoch, Epoch: 1},
		{JobID: "j", Event: "eval_completed", Scope: ScopeEpoch, Epoch: 1,
			Metrics: map[string]float64{"mrr": 0.2}},
		{JobID: "other", Event: "epoch_completed", Scope: ScopeEpoch, Epoch: 1},
	}
	for _, e := range seed {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	all, err := s.EpochEntries(ctx, "j", "")
	if err != nil {
		t.Fatalf("EpochEntries failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d epoch entries, want 2", len(all))
	}

	evals, err := s.EpochEntries(ctx, "j", "eval_completed")
	if err != nil {
		t.Fatalf("EpochEntries failed: %v", err)
	}
	if len(evals) != 1 || evals[0].Metrics["mrr"] != 0.2 {
		t.Errorf("unexpected eval entries: %+v", evals)
	}
}

func TestBestEpoch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	values := []float64{0.10, 0.25, 0.25, 0.20}
	for i, v := range values {
		err := s.Append(ctx, Entry{
			JobID: "j", Event: "eval_completed", Scope: ScopeEpoch,
			Epoch: i + 1, Metrics: map[string]float64{"mrr": v},
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	best, err := s.BestEpoch(ctx, "j", "mrr")
	if err != nil {
		t.Fatalf("BestEpoch failed: %v", err)
	}
	// Tie between epochs 2 and 3 resolves to the earliest.
	if best.Epoch != 2 {
		t.Errorf("best epoch = %d, want 2", best.Epoch)
	}

	_, err = s.BestEpoch(ctx, "j", "hits@10")
	if !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries for absent metric, got %v", err)
	}
}

func TestJobs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "b"} {
		if err := s.Append(ctx, Entry{JobID: id, Scope: ScopeEpoch, Epoch: 1}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	jobs, err := s.Jobs(ctx)
	if err != nil {
		t.Fatalf("Jobs failed: %v", err)
	}
	if len(jobs) != 2 || jobs[0] != "a" || jobs[1] != "b" {
		t.Errorf("Jobs = %v, want [a b]", jobs)
	}
}
