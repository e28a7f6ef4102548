package domain

import "strings"

// StatusCode is the canonical lifecycle state of a prospect.
type StatusCode int

const (
	StatusUnknown StatusCode = iota
	StatusNew
	StatusInProgress
	StatusQualified
	StatusLost
)

// ProspectStatus pairs the canonical code with the raw string the store
// returned. Legacy rows mix French and English labels for the same state,
// so the raw value is kept for verbatim display of unrecognized statuses.
type ProspectStatus struct {
	Code StatusCode
	Raw  string
}

// statusAliases maps every legacy spelling (lowercased) to its canonical code.
var statusAliases = map[string]StatusCode{
	"new":       StatusNew,
	"nouveau":   StatusNew,
	"en cours":  StatusInProgress,
	"qualifié":  StatusQualified,
	"won":       StatusQualified,
	"converted": StatusQualified,
	"gagné":     StatusQualified,
	"perdu":     StatusLost,
}

// NormalizeStatus maps a raw status string to its canonical state.
// Unrecognized values are not an error: they come back as StatusUnknown
// with the original string preserved.
func NormalizeStatus(raw string) ProspectStatus {
	if code, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return ProspectStatus{Code: code, Raw: raw}
	}
	return ProspectStatus{Code: StatusUnknown, Raw: raw}
}

// IsWon reports whether the status counts toward revenue and conversion.
func (s ProspectStatus) IsWon() bool {
	return s.Code == StatusQualified
}

// Label returns the display string: the canonical French label for known
// states, or the raw value untouched for unknown ones.
func (s ProspectStatus) Label() string {
	switch s.Code {
	case StatusNew:
		return "Nouveau"
	case StatusInProgress:
		return "En cours"
	case StatusQualified:
		return "Qualifié"
	case StatusLost:
		return "Perdu"
	default:
		return s.Raw
	}
}

// CanonicalValue returns the value written to the store for a canonical
// state, matching what the field app inserts. Unknown statuses keep their
// raw value so a round-trip never rewrites data.
func (s ProspectStatus) CanonicalValue() string {
	switch s.Code {
	case StatusNew:
		return "new"
	case StatusInProgress:
		return "en cours"
	case StatusQualified:
		return "qualifié"
	case StatusLost:
		return "perdu"
	default:
		return s.Raw
	}
}
