package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Document is the saved form of a set of scenarios. Only parameters are
// stored; schedules are always recomputed.
type Document struct {
	Scenarios []Scenario `json:"scenarios" yaml:"scenarios"`
}

// Encode writes scenarios to w as a json or yaml document.
func Encode(w io.Writer, format string, scenarios []Scenario) error {
	doc := Document{Scenarios: scenarios}
	if doc.Scenarios == nil {
		doc.Scenarios = []Scenario{}
	}

	switch normalizeFormat(format) {
	case constants.DocumentFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode scenarios as json: %w", err)
		}
	case constants.DocumentFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode scenarios as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml encoder: %w", err)
		}
	default:
		return fmt.Errorf("unsupported scenario document format %q", format)
	}
	return nil
}

// Decode reads a json or yaml scenario document from r and validates every
// scenario in it.
func Decode(r io.Reader, format string) ([]Scenario, error) {
	var doc Document

	switch normalizeFormat(format) {
	case constants.DocumentFormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json scenarios: %w", err)
		}
	case constants.DocumentFormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode yaml scenarios: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario document format %q", format)
	}

	portfolio, err := NewPortfolio(doc.Scenarios...)
	if err != nil {
		return nil, err
	}
	scenarios := portfolio.Scenarios()
	for _, s := range scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "yml" {
		return constants.DocumentFormatYAML
	}
	return f
}
