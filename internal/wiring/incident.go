package wiring

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"obelisk/pkg/pipeline"
)

// LoadIncident reads an incident payload from a JSON file. "-" reads
// from stdin.
func LoadIncident(path string) (pipeline.Incident, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return pipeline.Incident{}, fmt.Errorf("open incident: %w", err)
		}
		defer f.Close()
		r = f
	}
	return DecodeIncident(r)
}

// DecodeIncident parses an incident payload from JSON.
func DecodeIncident(r io.Reader) (pipeline.Incident, error) {
	var incident pipeline.Incident
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&incident); err != nil {
		return pipeline.Incident{}, fmt.Errorf("parse incident: %w", err)
	}
	if incident.DeploymentID == "" {
		return pipeline.Incident{}, fmt.Errorf("incident is missing deployment_id")
	}
	return incident, nil
}
