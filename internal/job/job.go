// Package job manages experiment job folders: each job gets a UUID, a folder
// holding the resolved configuration, a trace stream, and checkpoints.
package job

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tkge-lab/tkgel/internal/config"
	"github.com/tkge-lab/tkgel/internal/trace"
)

// Job is a single training or evaluation run rooted at a folder.
type Job struct {
	ID     string
	Type   string
	Dir    string
	Config *config.Config

	Trace *trace.Writer
	Log   *slog.Logger
}

// New creates a job folder under root, assigns a job_id into the config and
// writes the resolved config.yaml into the folder.
func New(cfg *config.Config, root string, log *slog.Logger) (*Job, error) {
	jobType, err := cfg.GetString("job.type")
	if err != nil {
		return nil, fmt.Errorf("reading job.type: %w", err)
	}

	id := uuid.NewString()
	if err := cfg.SetCreate("job_id", id); err != nil {
		return nil, fmt.Errorf("assigning job_id: %w", err)
	}

	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating job folder: %w", err)
	}
	if err := cfg.Save(filepath.Join(dir, "config.yaml")); err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}
	j := &Job{
		ID:     id,
		Type:   jobType,
		Dir:    dir,
		Config: cfg,
		Trace:  trace.NewWriter(dir),
		Log:    log.With("job_id", id, "job", jobType),
	}
	j.Log.Info("created job folder", "dir", dir)
	return j, nil
}

// NewEvalJob derives an evaluation job from a training job, the way the
// trainer builds its validation job: clone the config, switch job.type to
// eval, and map the valid split and trace level onto the eval section.
func NewEvalJob(train *Job, root string) (*Job, error) {
	cfg := train.Config.Clone()
	if err := cfg.Set("job.type", "eval"); err != nil {
		return nil, err
	}
	if split, err := cfg.GetString("valid.split"); err == nil && split != "" {
		if err := cfg.Set("eval.split", split); err != nil {
			return nil, err
		}
	}
	if level, err := cfg.GetString("valid.trace_level"); err == nil {
		if err := cfg.Set("eval.trace_level", level); err != nil {
			return nil, err
		}
	}
	return New(cfg, root, train.Log)
}

// Close releases the job's trace writer.
func (j *Job) Close() error {
	return j.Trace.Close()
}
