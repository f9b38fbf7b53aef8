// Package dataload reads two-column numeric tables into a [series.Series],
// substituting deterministic synthetic data when the table cannot be used.
//
// Load never fails: every failure mode (missing file, unreadable file, empty
// table, malformed rows) is recovered by falling back to a [Generator], and the
// returned [Outcome] records which path was taken and why. Exactly one warning
// is logged per fallback.
//
// Delimited text and .xlsx spreadsheets are supported:
//
//	out := dataload.Load("data.csv", dataload.Options{Logger: logger})
//	if out.Status == dataload.Fallback {
//	    fmt.Println("using synthetic data:", out.Reason)
//	}
//	s := out.Series
package dataload

import (
	"github.com/matzehuels/pubfig/pkg/series"
)

// Status says whether an Outcome holds real or synthetic data.
type Status int

const (
	// Loaded means the series was parsed from the input.
	Loaded Status = iota
	// Fallback means the input was unusable and the series was generated.
	Fallback
)

// String returns "loaded" or "fallback".
func (s Status) String() string {
	if s == Fallback {
		return "fallback"
	}
	return "loaded"
}

// Reason classifies why a load fell back.
type Reason string

// Fallback reasons.
const (
	ReasonNone       Reason = ""
	ReasonMissing    Reason = "missing"    // the path does not exist
	ReasonUnreadable Reason = "unreadable" // the file exists but could not be read
	ReasonEmpty      Reason = "empty"      // no data rows
	ReasonMalformed  Reason = "malformed"  // a row holds non-numeric values
	ReasonShape      Reason = "shape"      // a row has too few columns
)

// Outcome is the tagged result of a load.
type Outcome struct {
	Series series.Series
	Status Status
	Reason Reason // set when Status is Fallback
	Err    error  // DATA_UNAVAILABLE cause, set when Status is Fallback
	Source string // path or stream name
}

// Loaded reports whether real data was read.
func (o Outcome) Loaded() bool { return o.Status == Loaded }

// Label is a short description of the outcome, e.g. "loaded" or
// "fallback:missing". The render server reports it in a response header.
func (o Outcome) Label() string {
	if o.Status == Fallback {
		return o.Status.String() + ":" + string(o.Reason)
	}
	return o.Status.String()
}
