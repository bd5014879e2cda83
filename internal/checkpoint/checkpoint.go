// Package checkpoint manages checkpoint file naming and the trainer's
// retention schedule (train.checkpoint.every / train.checkpoint.keep).
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	filePattern = "checkpoint_%05d.pt"
	bestName    = "checkpoint_best.pt"
)

// File returns the checkpoint path for an epoch.
func File(dir string, epoch int) string {
	return filepath.Join(dir, fmt.Sprintf(filePattern, epoch))
}

// BestFile returns the path of the best-model checkpoint.
func BestFile(dir string) string {
	return filepath.Join(dir, bestName)
}

// EpochToDelete returns which old checkpoint to remove after saving the
// checkpoint for epoch, or -1 to keep everything. The schedule:
//   - every == 0: keep no old checkpoints, delete epoch-1.
//   - epoch-1 off the every-schedule: delete epoch-1.
//   - keep > 0: retain at most keep scheduled checkpoints, delete
//     epoch-1-every*keep.
//
// The best checkpoint is never part of the schedule.
func EpochToDelete(epoch, every, keep int) int {
	if epoch <= 1 {
		return -1
	}
	if every == 0 {
		return epoch - 1
	}
	if (epoch-1)%every != 0 {
		return epoch - 1
	}
	if keep > 0 {
		return epoch - 1 - every*keep
	}
	return -1
}

// Epochs returns the epochs with a checkpoint file in dir, sorted ascending.
func Epochs(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint directory: %w", err)
	}
	var epochs []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "checkpoint_") || !strings.HasSuffix(name, ".pt") || name == bestName {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, "checkpoint_"), ".pt")
		epoch, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		epochs = append(epochs, epoch)
	}
	sort.Ints(epochs)
	return epochs, nil
}

// Prune applies the retention schedule to an existing directory, as if each
// epoch's checkpoint had been saved in order. The best checkpoint and the
// latest epoch are always retained. Returns the removed file paths.
func Prune(dir string, every, keep int) ([]string, error) {
	epochs, err := Epochs(dir)
	if err != nil {
		return nil, err
	}
	if len(epochs) == 0 {
		return nil, nil
	}

	max := epochs[len(epochs)-1]
	var removed []string
	for epoch := 2; epoch <= max; epoch++ {
		del := EpochToDelete(epoch, every, keep)
		if del <= 0 {
			continue
		}
		path := File(dir, del)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("removing old checkpoint: %w", err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
