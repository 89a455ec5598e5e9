// Package scenario groups loan parameters into named scenarios, evaluates
// them into schedules and summaries, and reads and writes scenario documents.
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/loan-analyzer/pkg/datetime"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
)

// ErrDuplicateName is returned when two scenarios share a name.
var ErrDuplicateName = errors.New("duplicate scenario name")

// Scenario is a named set of loan parameters.
type Scenario struct {
	Name           string               `json:"name" yaml:"name"`
	StartDate      string               `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	IncludeInGraph bool                 `json:"includeInGraph" yaml:"includeInGraph"`
	Loan           loans.LoanParameters `json:"loan" yaml:"loan"`
}

// Validate checks the scenario metadata and its loan parameters.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: scenario name cannot be empty", loans.ErrInvalidParameter)
	}
	if s.StartDate != "" {
		if err := datetime.ValidateDate(s.StartDate); err != nil {
			return fmt.Errorf("%w: scenario %s: %v", loans.ErrInvalidParameter, s.Name, err)
		}
	}
	if err := s.Loan.Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return nil
}

// Portfolio is an ordered set of uniquely named scenarios.
type Portfolio struct {
	scenarios []Scenario
	created   int
}

// NewPortfolio builds a portfolio from existing scenarios.
func NewPortfolio(scenarios ...Scenario) (*Portfolio, error) {
	p := &Portfolio{}
	for _, s := range scenarios {
		if _, err := p.Add(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add appends a scenario and returns its index. An empty name is replaced by
// "Loan N", N counting every scenario ever added.
func (p *Portfolio) Add(s Scenario) (int, error) {
	p.created++
	if strings.TrimSpace(s.Name) == "" {
		s.Name = p.nextDefaultName()
	}
	if p.indexOf(s.Name) >= 0 {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateName, s.Name)
	}
	p.scenarios = append(p.scenarios, s)
	return len(p.scenarios) - 1, nil
}

func (p *Portfolio) nextDefaultName() string {
	n := p.created
	for {
		name := fmt.Sprintf("Loan %d", n)
		if p.indexOf(name) < 0 {
			return name
		}
		n++
	}
}

// Remove deletes the scenario at index.
func (p *Portfolio) Remove(index int) error {
	if err := p.checkIndex(index); err != nil {
		return err
	}
	p.scenarios = append(p.scenarios[:index], p.scenarios[index+1:]...)
	return nil
}

// Rename changes the name of the scenario at index.
func (p *Portfolio) Rename(index int, name string) error {
	if err := p.checkIndex(index); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: scenario name cannot be empty", loans.ErrInvalidParameter)
	}
	if existing := p.indexOf(name); existing >= 0 && existing != index {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	p.scenarios[index].Name = name
	return nil
}

// Len is the number of scenarios.
func (p *Portfolio) Len() int {
	return len(p.scenarios)
}

// Scenarios returns a copy of all scenarios in order.
func (p *Portfolio) Scenarios() []Scenario {
	out := make([]Scenario, len(p.scenarios))
	copy(out, p.scenarios)
	return out
}

// Included returns the scenarios flagged for charting.
func (p *Portfolio) Included() []Scenario {
	return Included(p.scenarios)
}

// Included filters scenarios flagged for charting.
func Included(scenarios []Scenario) []Scenario {
	var out []Scenario
	for _, s := range scenarios {
		if s.IncludeInGraph {
			out = append(out, s)
		}
	}
	return out
}

func (p *Portfolio) indexOf(name string) int {
	for i, s := range p.scenarios {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (p *Portfolio) checkIndex(index int) error {
	if index < 0 || index >= len(p.scenarios) {
		return fmt.Errorf("scenario index %d out of range [0, %d)", index, len(p.scenarios))
	}
	return nil
}
