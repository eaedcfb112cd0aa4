package redact

import "regexp"

// labelRule matches "<label><sep><value up to line end>" for one catalog label.
// Group 1 is the label-and-separator prefix, group 2 the value span.
type labelRule struct {
	Label   string
	Pattern *regexp.Regexp
}

// patternRule matches a free-standing PII token shape.
type patternRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Finding summarizes one rule's matches within a document. It carries counts
// only; matched values are never retained.
type Finding struct {
	EntityType string `json:"entityType"`
	Count      int    `json:"count"`
}

// Result contains the outcome of processing text through the engine
type Result struct {
	Redacted string    `json:"redacted"`
	Findings []Finding `json:"findings"`
	Original string    `json:"-"` // Never serialize original text
}

// TotalFindings returns the number of masked spans across all rules.
func (r Result) TotalFindings() int {
	total := 0
	for _, f := range r.Findings {
		total += f.Count
	}
	return total
}
