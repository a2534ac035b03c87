package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/cratepanel/internal/model"
)

// CrateJob is a crate description as stored on disk: a name, optional
// overrides of the layout settings, and the panels.
type CrateJob struct {
	Name string `json:"name" yaml:"name"`

	Strategy        string            `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	HybridThreshold *float64          `json:"hybrid_threshold,omitempty" yaml:"hybrid_threshold,omitempty"`
	Stock           *model.StockSheet `json:"stock,omitempty" yaml:"stock,omitempty"`
	CleatWidth      float64           `json:"cleat_width,omitempty" yaml:"cleat_width,omitempty"`

	Panels []model.Panel `json:"panels" yaml:"panels"`
}

// ErrNoPanels is returned for jobs without any panel.
var ErrNoPanels = errors.New("job has no panels")

// Crate returns the job's panels as a crate. Panels without an ID get one.
func (j CrateJob) Crate() model.Crate {
	panels := make([]model.Panel, len(j.Panels))
	for i, p := range j.Panels {
		if p.ID == "" {
			p.ID = model.NewPanel(p.Label, p.Width, p.Height).ID
		}
		panels[i] = p
	}
	return model.Crate{Name: j.Name, Panels: panels}
}

// ApplyToSettings copies the job's overrides into s. It reports false when
// the strategy name was not recognised; s then uses the position strategy.
func (j CrateJob) ApplyToSettings(s *model.LayoutSettings) bool {
	ok := true
	if j.Strategy != "" {
		s.Strategy, ok = model.ParseStrategy(j.Strategy)
	}
	if j.HybridThreshold != nil {
		s.HybridThreshold = *j.HybridThreshold
	}
	if j.Stock != nil && j.Stock.Width > 0 && j.Stock.Height > 0 {
		s.Stock = *j.Stock
	}
	if j.CleatWidth > 0 {
		s.CleatMemberWidth = j.CleatWidth
	}
	return ok
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadCrateJob reads a job file. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON.
func LoadCrateJob(path string) (CrateJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CrateJob{}, err
	}

	var job CrateJob
	if isYAML(path) {
		err = yaml.Unmarshal(data, &job)
	} else {
		err = json.Unmarshal(data, &job)
	}
	if err != nil {
		return CrateJob{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(job.Panels) == 0 {
		return CrateJob{}, fmt.Errorf("%s: %w", path, ErrNoPanels)
	}
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return job, nil
}

// SaveCrateJob writes a job file in the format implied by its extension.
func SaveCrateJob(path string, job CrateJob) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(job)
	} else {
		data, err = json.MarshalIndent(job, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
