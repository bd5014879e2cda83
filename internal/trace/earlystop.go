package trace

import "fmt"

// EarlyStopping holds the validation-based stopping parameters from the
// valid.early_stopping config section.
type EarlyStopping struct {
	Metric string

	// Patience stops training when the best validation result is more than
	// this many validation runs old. Zero disables the check.
	Patience int

	// MinThresholdEpochs and MinThresholdValue stop training when, past the
	// given epoch, the best metric value is still below the threshold.
	MinThresholdEpochs int
	MinThresholdValue  float64
}

// BestIndex returns the index of the highest value, first occurrence winning
// ties. Returns -1 for an empty slice.
func BestIndex(values []float64) int {
	best := -1
	for i, v := range values {
		if best == -1 || v > values[best] {
			best = i
		}
	}
	return best
}

// Decide applies the trainer's early-stopping rules to the ordered validation
// metric values, where epoch is the current training epoch. It returns
// whether training should stop and a human-readable reason.
func (es EarlyStopping) Decide(values []float64, epoch int) (bool, string) {
	best := BestIndex(values)
	if best == -1 {
		return false, ""
	}

	if es.Patience > 0 && len(values) > es.Patience && best < len(values)-es.Patience {
		return true, fmt.Sprintf(
			"%s did not improve over best result in the last %d validation runs",
			es.Metric, es.Patience)
	}

	if epoch > es.MinThresholdEpochs && values[best] < es.MinThresholdValue {
		return true, fmt.Sprintf(
			"%s did not achieve min threshold after %d epochs", es.Metric, epoch)
	}

	return false, ""
}

// IsBest reports whether the latest validation run is the best so far, which
// is when the trainer snapshots the best checkpoint.
func IsBest(values []float64) bool {
	best := BestIndex(values)
	return best != -1 && best == len(values)-1
}
