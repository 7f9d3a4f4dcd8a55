package match

import (
	"regexp"
	"strings"
)

// Markers delimiting the recommendation block in an assistant reply.
const (
	BlockStart = "[ATTACHMENTS]"
	BlockEnd   = "[/ATTACHMENTS]"

	// NoneSentinel inside the block means the model considered attachments
	// and decided none apply. This is the common case, not an error.
	NoneSentinel = "none"
)

// Stage identifies which matching stage resolved a recommendation.
type Stage string

const (
	StageExact     Stage = "exact"
	StageSubstring Stage = "substring"
	StageKeyword   Stage = "keyword"
	StageNone      Stage = "none"
)

// FileRef is a candidate file available to be recommended as an attachment.
type FileRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Recommendation is one parsed line of the recommendation block.
type Recommendation struct {
	DeclaredFilename string `json:"declaredFilename"`
	Reason           string `json:"reason"`
}

// RecommendedAttachment is a recommendation resolved against the candidate
// listing. MatchedFile is nil when no candidate matched; the recommendation
// is still surfaced so the user can see what the model asked for.
type RecommendedAttachment struct {
	DeclaredFilename string   `json:"declaredFilename"`
	Reason           string   `json:"reason"`
	MatchedFile      *FileRef `json:"matchedFile,omitempty"`
	Stage            Stage    `json:"stage"`
}

// recommendationLineRegex is the primary line grammar:
//
//	filename: Spec_Sheet.pdf | reason: referenced in the RFQ
var recommendationLineRegex = regexp.MustCompile(`(?i)^\s*(?:[-*]\s*)?filename\s*:\s*(.+?)\s*\|\s*reason\s*:\s*(.*?)\s*$`)

// stripRegex removes everything except letters, digits and dots. Used by the
// substring stage to absorb punctuation and spacing drift between the name
// the model declares and the real file name.
var stripRegex = regexp.MustCompile(`[^a-z0-9.]+`)

// tokenSplitRegex splits a declared filename into keyword tokens.
var tokenSplitRegex = regexp.MustCompile(`[\s_\-.]+`)

// Parse extracts the recommendation block from an assistant reply and parses
// each line into a Recommendation. A missing block or the "none" sentinel
// yields an empty list. Malformed lines degrade through two looser parses and
// never abort the remaining lines.
func Parse(reply string) []Recommendation {
	block, ok := extractBlock(reply)
	if !ok {
		return nil
	}

	var recs []Recommendation
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, NoneSentinel) {
			continue
		}
		recs = append(recs, parseLine(line))
	}
	return recs
}

// extractBlock returns the text between the block markers.
func extractBlock(reply string) (string, bool) {
	start := strings.Index(reply, BlockStart)
	if start < 0 {
		return "", false
	}
	rest := reply[start+len(BlockStart):]
	end := strings.Index(rest, BlockEnd)
	if end < 0 {
		// Unterminated block: take everything after the start marker rather
		// than dropping the recommendations.
		return rest, true
	}
	return rest[:end], true
}

// parseLine parses one recommendation line, falling back from the structured
// grammar to a single pipe split and finally to a bare filename.
func parseLine(line string) Recommendation {
	if m := recommendationLineRegex.FindStringSubmatch(line); m != nil {
		return Recommendation{DeclaredFilename: m[1], Reason: m[2]}
	}

	if before, after, found := strings.Cut(line, "|"); found {
		return Recommendation{
			DeclaredFilename: trimFieldLabel(before, "filename"),
			Reason:           trimFieldLabel(after, "reason"),
		}
	}

	return Recommendation{DeclaredFilename: trimFieldLabel(line, "filename")}
}

// trimFieldLabel removes an optional "label:" prefix and list bullets.
func trimFieldLabel(s, label string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-* \t")
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, label) {
		rest := strings.TrimSpace(s[len(label):])
		if trimmed, ok := strings.CutPrefix(rest, ":"); ok {
			return strings.TrimSpace(trimmed)
		}
	}
	return strings.TrimSpace(s)
}

// Resolve matches each recommendation against the candidate listing in strict
// precedence order: case-insensitive equality, punctuation-stripped substring,
// then keyword overlap. Every input maps to exactly one output record.
func Resolve(recs []Recommendation, candidates []FileRef) []RecommendedAttachment {
	results := make([]RecommendedAttachment, 0, len(recs))
	for _, rec := range recs {
		matched, stage := matchCandidate(rec.DeclaredFilename, candidates)
		results = append(results, RecommendedAttachment{
			DeclaredFilename: rec.DeclaredFilename,
			Reason:           rec.Reason,
			MatchedFile:      matched,
			Stage:            stage,
		})
	}
	return results
}

// Recommendations parses reply and resolves the result against candidates.
func Recommendations(reply string, candidates []FileRef) []RecommendedAttachment {
	return Resolve(Parse(reply), candidates)
}

func matchCandidate(declared string, candidates []FileRef) (*FileRef, Stage) {
	for i := range candidates {
		if strings.EqualFold(declared, candidates[i].Name) {
			return &candidates[i], StageExact
		}
	}

	for i := range candidates {
		if substringMatch(declared, candidates[i].Name) {
			return &candidates[i], StageSubstring
		}
	}

	tokens := keywordTokens(declared)
	if len(tokens) > 0 {
		// ceil(50%) of the significant tokens must appear in the candidate.
		required := (len(tokens) + 1) / 2
		for i := range candidates {
			if keywordOverlap(tokens, candidates[i].Name) >= required {
				return &candidates[i], StageKeyword
			}
		}
	}

	return nil, StageNone
}

// substringMatch compares names after lowercasing and stripping everything
// except letters, digits and dots. Extensions are also trimmed on both sides
// so "CLIN_0001_Drawing.pdf" finds "clin0001-drawing-v2.PDF".
func substringMatch(declared, candidate string) bool {
	ds := stripName(declared)
	cs := stripName(candidate)
	if ds == "" || cs == "" {
		return false
	}
	if strings.Contains(cs, ds) || strings.Contains(ds, cs) {
		return true
	}

	db := stripName(trimExtension(declared))
	cb := stripName(trimExtension(candidate))
	if db == "" || cb == "" {
		return false
	}
	return strings.Contains(cb, db) || strings.Contains(db, cb)
}

func stripName(name string) string {
	return stripRegex.ReplaceAllString(strings.ToLower(name), "")
}

func trimExtension(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}

// keywordTokens splits a declared filename on whitespace, underscores,
// hyphens and dots, keeping only tokens longer than 2 characters.
func keywordTokens(declared string) []string {
	var tokens []string
	for _, tok := range tokenSplitRegex.Split(strings.ToLower(declared), -1) {
		if len(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func keywordOverlap(tokens []string, candidate string) int {
	lower := strings.ToLower(candidate)
	count := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			count++
		}
	}
	return count
}
