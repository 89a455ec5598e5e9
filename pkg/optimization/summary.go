// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single optimization directive.
type Summary struct {
	TargetName      string   `json:"targetName"`
	Field           string   `json:"field"`
	TargetMonths    int      `json:"targetMonths"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	PeriodsUsed     int      `json:"periodsUsed"`
	TotalInterest   float64  `json:"totalInterest"`
	InterestSaved   float64  `json:"interestSaved"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"originalDisplay,omitempty"`
	ValueDisplay    string   `json:"valueDisplay,omitempty"`
}
