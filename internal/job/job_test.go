package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tkge-lab/tkgel/internal/config"
)

func trainConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load([]byte(`
job:
  type: train
valid:
  split: valid
  trace_level: epoch
eval:
  split: test
  trace_level: example
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg
}

func TestNewCreatesFolder(t *testing.T) {
	root := t.TempDir()
	j, err := New(trainConfig(t), root, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer j.Close()

	if j.ID == "" {
		t.Error("job has no ID")
	}
	if j.Type != "train" {
		t.Errorf("job type = %q, want train", j.Type)
	}

	// The resolved config lands in the folder with the job_id assigned.
	data, err := os.ReadFile(filepath.Join(j.Dir, "config.yaml"))
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	saved, err := config.Load(data)
	if err != nil {
		t.Fatalf("parsing saved config: %v", err)
	}
	if id, _ := saved.GetString("job_id"); id != j.ID {
		t.Errorf("saved job_id = %q, want %q", id, j.ID)
	}
}

func TestNewEvalJob(t *testing.T) {
	root := t.TempDir()
	train, err := New(trainConfig(t), root, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer train.Close()

	eval, err := NewEvalJob(train, root)
	if err != nil {
		t.Fatalf("NewEvalJob failed: %v", err)
	}
	defer eval.Close()

	if eval.Type != "eval" {
		t.Errorf("eval job type = %q", eval.Type)
	}
	if eval.ID == train.ID {
		t.Error("eval job reuses the training job ID")
	}
	if split, _ := eval.Config.GetString("eval.split"); split != "valid" {
		t.Errorf("eval.split = %q, want valid", split)
	}
	if level, _ := eval.Config.GetString("eval.trace_level"); level != "epoch" {
		t.Errorf("eval.trace_level = %q, want epoch", level)
	}

	// The training config is untouched.
	if typ, _ := train.Config.GetString("job.type"); typ != "train" {
		t.Errorf("train job.type mutated to %q", typ)
	}
}
