package core

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseGroups decodes the groups held in data. name identifies the document in
// returned errors. data may hold several YAML documents; each one must be a
// sequence of groups and they are returned in stream order.
func ParseGroups(name string, data []byte) ([]Group, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var groups []Group
	for {
		var doc []Group
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Document: name, Err: err}
		}

		for i, g := range doc {
			if err := validateJobs(g.Jobs); err != nil {
				return nil, &ParseError{
					Document: name,
					Err:      errors.Wrapf(err, "group %d", len(groups)+i+1),
				}
			}
		}
		groups = append(groups, doc...)
	}
	return groups, nil
}

// validateJobs rejects job names that can't be turned into a target file
// name.
func validateJobs(jobs []string) error {
	for _, job := range jobs {
		switch {
		case job == "":
			return errors.New("job name must not be empty")
		case job == "." || job == "..":
			return errors.Errorf("invalid job name %q", job)
		case strings.ContainsAny(job, `/\`):
			return errors.Errorf("job name %q must not contain a path separator", job)
		}
	}
	return nil
}
