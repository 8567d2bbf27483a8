// Package project persists packing jobs as JSON files.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/piwi3910/rectbin/internal/model"
)

// JobExt is the file extension used for saved jobs.
const JobExt = ".json"

// DefaultJobDir returns the default directory for saved jobs, ~/.rectbin/jobs.
func DefaultJobDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rectbin", "jobs")
}

// SaveJob writes a job to path as indented JSON, creating missing parent
// directories. A zero version is stamped with the current one.
func SaveJob(path string, job model.Job) error {
	if job.Version == 0 {
		job.Version = model.JobVersion
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create job directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write job file: %w", err)
	}
	return nil
}

// LoadJob reads a job from path. Files without a version or with a newer
// version than this build supports are rejected with ErrInvalidJob.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("read job file: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, fmt.Errorf("parse job file: %w", err)
	}
	switch {
	case job.Version == 0:
		return model.Job{}, fmt.Errorf("%w: missing version field", ErrInvalidJob)
	case job.Version > model.JobVersion:
		return model.Job{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidJob, job.Version)
	}

	if job.Items == nil {
		job.Items = []model.ItemSpec{}
	}
	for i, spec := range job.Items {
		if err := spec.Rectangle().Validate(); err != nil {
			return model.Job{}, fmt.Errorf("%w: item %d: %v", ErrInvalidJob, i+1, err)
		}
	}
	if err := job.Bin.Validate(); err != nil {
		return model.Job{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return job, nil
}

// ListJobs returns the job files in dir in natural name order. A missing
// directory yields an empty list.
func ListJobs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read job directory: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), JobExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(natural.StringSlice(names))

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}
