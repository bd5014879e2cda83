package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileNaming(t *testing.T) {
	if got := File("run", 7); got != filepath.Join("run", "checkpoint_00007.pt") {
		t.Errorf("File = %q", got)
	}
	if got := BestFile("run"); got != filepath.Join("run", "checkpoint_best.pt") {
		t.Errorf("BestFile = %q", got)
	}
}

func TestEpochToDelete(t *testing.T) {
	tests := []struct {
		name                string
		epoch, every, keep  int
		want                int
	}{
		{"first epoch never deletes", 1, 5, 3, -1},
		{"every zero keeps nothing", 8, 0, 3, 7},
		{"off schedule deletes previous", 7, 5, 3, 6},
		{"on schedule within keep", 6, 5, 0, -1},
		{"on schedule beyond keep", 16, 5, 2, 5},
		{"keep zero retains schedule", 16, 5, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EpochToDelete(tt.epoch, tt.every, tt.keep); got != tt.want {
				t.Errorf("EpochToDelete(%d, %d, %d) = %d, want %d",
					tt.epoch, tt.every, tt.keep, got, tt.want)
			}
		})
	}
}

func writeCheckpoints(t *testing.T, dir string, epochs []int, best bool) {
	t.Helper()
	for _, e := range epochs {
		if err := os.WriteFile(File(dir, e), []byte("x"), 0644); err != nil {
			t.Fatalf("writing checkpoint: %v", err)
		}
	}
	if best {
		if err := os.WriteFile(BestFile(dir), []byte("x"), 0644); err != nil {
			t.Fatalf("writing best checkpoint: %v", err)
		}
	}
}

func TestEpochs(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoints(t, dir, []int{3, 1, 10}, true)

	epochs, err := Epochs(dir)
	if err != nil {
		t.Fatalf("Epochs failed: %v", err)
	}
	want := []int{1, 3, 10}
	if len(epochs) != len(want) {
		t.Fatalf("Epochs = %v, want %v", epochs, want)
	}
	for i := range want {
		if epochs[i] != want[i] {
			t.Errorf("Epochs[%d] = %d, want %d", i, epochs[i], want[i])
		}
	}
}

func TestPruneEveryZero(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoints(t, dir, []int{1, 2, 3, 4, 5}, true)

	removed, err := Prune(dir, 0, 0)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if len(removed) != 4 {
		t.Errorf("removed %d checkpoints, want 4", len(removed))
	}

	epochs, _ := Epochs(dir)
	if len(epochs) != 1 || epochs[0] != 5 {
		t.Errorf("remaining epochs = %v, want [5]", epochs)
	}
	if _, err := os.Stat(BestFile(dir)); err != nil {
		t.Error("Prune removed the best checkpoint")
	}
}

func TestPruneSchedule(t *testing.T) {
	dir := t.TempDir()
	epochs := make([]int, 0, 20)
	for e := 1; e <= 20; e++ {
		epochs = append(epochs, e)
	}
	writeCheckpoints(t, dir, epochs, false)

	if _, err := Prune(dir, 5, 2); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	// every=5, keep=2 at epoch 20: scheduled epochs 15 and 10 survive,
	// plus the latest.
	remaining, _ := Epochs(dir)
	want := []int{10, 15, 20}
	if len(remaining) != len(want) {
		t.Fatalf("remaining = %v, want %v", remaining, want)
	}
	for i := range want {
		if remaining[i] != want[i] {
			t.Errorf("remaining[%d] = %d, want %d", i, remaining[i], want[i])
		}
	}
}
