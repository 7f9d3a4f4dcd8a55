package opportunity

import (
	"regexp"
	"strings"
)

// Metadata describes the procurement opportunity a message is linked to.
// It rides along in a session's subject snapshot so the model can ground its
// drafts in the right solicitation.
type Metadata struct {
	SolicitationNumber string `json:"solicitationNumber"`
	Agency             string `json:"agency,omitempty"`
	Title              string `json:"title,omitempty"`
}

// Solicitation number shapes seen in practice. DoD-style numbers carry dashed
// segments (W912DY-25-R-0012); GSA-style numbers run the segments together
// (47QFCA25R0003).
var (
	dashedSolicitationRegex = regexp.MustCompile(`\b[A-Z0-9]{6}-\d{2}-[A-Z]-\d{4}\b`)
	compactSolicitationRegex = regexp.MustCompile(`\b\d{2}[A-Z]{4}\d{2}[A-Z]\d{4}\b`)
)

// ScanSolicitationNumber extracts the first recognizable solicitation number
// from text. Returns false when nothing matches.
func ScanSolicitationNumber(text string) (string, bool) {
	upper := strings.ToUpper(text)
	if m := dashedSolicitationRegex.FindString(upper); m != "" {
		return m, true
	}
	if m := compactSolicitationRegex.FindString(upper); m != "" {
		return m, true
	}
	return "", false
}

// FromSubject builds opportunity metadata from an email subject line, or nil
// when the subject carries no recognizable solicitation number.
func FromSubject(subject string) *Metadata {
	number, ok := ScanSolicitationNumber(subject)
	if !ok {
		return nil
	}
	return &Metadata{
		SolicitationNumber: number,
		Title:              strings.TrimSpace(subject),
	}
}
