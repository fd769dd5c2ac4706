package core

import "github.com/prometheus/common/model"

// Group bundles one or more jobs with the labels and targets they share, as
// authored in a source document.
type Group struct {
	Jobs    []string          `yaml:"jobs"`    // Jobs the group's targets are scraped by
	Labels  map[string]string `yaml:"labels"`  // Labels attached to every target
	Targets []string          `yaml:"targets"` // Scrape addresses, order preserved
}

// Record is a single-job entry of a file_sd target file.
type Record struct {
	Jobs    []string       `json:"jobs" yaml:"jobs"`
	Labels  model.LabelSet `json:"labels" yaml:"labels"`
	Targets []string       `json:"targets" yaml:"targets"`
}

// NewRecord expands g for one of its jobs. The returned record owns copies of
// the group's labels and targets and never carries nil collections, so empty
// values serialize as {} and [].
func NewRecord(job string, g Group) Record {
	labels := make(model.LabelSet, len(g.Labels))
	for k, v := range g.Labels {
		labels[model.LabelName(k)] = model.LabelValue(v)
	}

	targets := make([]string, len(g.Targets))
	copy(targets, g.Targets)

	return Record{
		Jobs:    []string{job},
		Labels:  labels,
		Targets: targets,
	}
}
