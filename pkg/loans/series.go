package loans

// Point is one sample of a monthly series.
type Point struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// Series is a named, labeled numeric series that a presentation layer can
// plot without knowing where the numbers came from.
type Series interface {
	Name() string
	Label() string
	Points() []Point
}

type series struct {
	name   string
	label  string
	points []Point
}

func (s series) Name() string  { return s.name }
func (s series) Label() string { return s.label }

// Points returns a copy so callers cannot alter the series.
func (s series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

func (r Result) project(name, label string, value func(PaymentPeriod) float64) Series {
	points := make([]Point, len(r.Periods))
	for i, p := range r.Periods {
		points[i] = Point{Month: p.Month, Value: value(p)}
	}
	return series{name: name, label: label, points: points}
}

// CumulativePrincipalSeries is the principal paid to date, month by month.
func (r Result) CumulativePrincipalSeries() Series {
	return r.project("cumulative_principal", "Principal Paid", func(p PaymentPeriod) float64 {
		return p.CumulativePrincipal
	})
}

// CumulativeInterestSeries is the interest paid to date, month by month.
func (r Result) CumulativeInterestSeries() Series {
	return r.project("cumulative_interest", "Interest Paid", func(p PaymentPeriod) float64 {
		return p.CumulativeInterest
	})
}

// BalanceSeries is the remaining balance after each payment.
func (r Result) BalanceSeries() Series {
	return r.project("balance", "Remaining Balance", func(p PaymentPeriod) float64 {
		return p.Balance
	})
}
