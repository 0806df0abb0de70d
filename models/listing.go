package models

import "time"

// Listing is one extracted property record. All three fields are always
// populated; adapters drop any listing that cannot fill every field.
// Price is kept exactly as the source displays it (currency symbol and unit
// suffix included).
type Listing struct {
	Owner        string `json:"owner"`
	Price        string `json:"price"`
	PropertyName string `json:"property_name"`
}

// FetchOutcome is the result of resolving one source for one locality.
// Err == nil means Ok(Listings); otherwise the source Failed and Listings is nil.
type FetchOutcome struct {
	Source    string    `json:"source"`
	Listings  []Listing `json:"-"`
	Count     int       `json:"count"`
	FromCache bool      `json:"from_cache"`
	Err       error     `json:"-"`
	Reason    string    `json:"error,omitempty"`
}

// Ok builds a successful outcome.
func Ok(source string, listings []Listing, fromCache bool) FetchOutcome {
	return FetchOutcome{
		Source:    source,
		Listings:  listings,
		Count:     len(listings),
		FromCache: fromCache,
	}
}

// Failed builds a failed outcome carrying the reason.
func Failed(source string, err error) FetchOutcome {
	return FetchOutcome{Source: source, Err: err, Reason: err.Error()}
}

func (o FetchOutcome) OK() bool { return o.Err == nil }

// RunReport is everything one orchestrator run produced. The combined
// Listings stay available even when the output write failed, so the caller
// can retry the write alone.
type RunReport struct {
	RunID      string         `json:"run_id"`
	Locality   string         `json:"locality"`
	Sources    []string       `json:"sources"`
	Outcomes   []FetchOutcome `json:"outcomes"`
	Listings   []Listing      `json:"listings"`
	OutputPath string         `json:"output_path"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
}

// Succeeded returns the number of sources that produced an Ok outcome.
func (r *RunReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// AllFailed reports whether every requested source failed.
func (r *RunReport) AllFailed() bool {
	return len(r.Outcomes) > 0 && r.Succeeded() == 0
}
