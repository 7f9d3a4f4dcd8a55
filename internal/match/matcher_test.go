package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected []Recommendation
	}{
		{
			name:     "no block present",
			reply:    "Here is a draft reply for the vendor. Regards.",
			expected: nil,
		},
		{
			name:     "none sentinel",
			reply:    "Draft done.\n[ATTACHMENTS]\nnone\n[/ATTACHMENTS]",
			expected: nil,
		},
		{
			name:  "structured line",
			reply: "[ATTACHMENTS]\nfilename: Spec_Sheet.pdf | reason: referenced in the RFQ\n[/ATTACHMENTS]",
			expected: []Recommendation{
				{DeclaredFilename: "Spec_Sheet.pdf", Reason: "referenced in the RFQ"},
			},
		},
		{
			name:  "structured line with bullet",
			reply: "[ATTACHMENTS]\n- filename: Pricing.xlsx | reason: updated pricing\n[/ATTACHMENTS]",
			expected: []Recommendation{
				{DeclaredFilename: "Pricing.xlsx", Reason: "updated pricing"},
			},
		},
		{
			name:  "fallback single pipe split",
			reply: "[ATTACHMENTS]\nSpec_Sheet.pdf | they asked for specs\n[/ATTACHMENTS]",
			expected: []Recommendation{
				{DeclaredFilename: "Spec_Sheet.pdf", Reason: "they asked for specs"},
			},
		},
		{
			name:  "fallback bare filename defaults reason to empty",
			reply: "[ATTACHMENTS]\nSpec_Sheet.pdf\n[/ATTACHMENTS]",
			expected: []Recommendation{
				{DeclaredFilename: "Spec_Sheet.pdf", Reason: ""},
			},
		},
		{
			name:  "malformed line does not abort remaining lines",
			reply: "[ATTACHMENTS]\nfilename: A.pdf | reason: first\nB.pdf\nfilename: C.pdf | reason: third\n[/ATTACHMENTS]",
			expected: []Recommendation{
				{DeclaredFilename: "A.pdf", Reason: "first"},
				{DeclaredFilename: "B.pdf", Reason: ""},
				{DeclaredFilename: "C.pdf", Reason: "third"},
			},
		},
		{
			name:  "unterminated block still parsed",
			reply: "text\n[ATTACHMENTS]\nfilename: A.pdf | reason: r",
			expected: []Recommendation{
				{DeclaredFilename: "A.pdf", Reason: "r"},
			},
		},
		{
			name:     "empty block",
			reply:    "[ATTACHMENTS]\n\n[/ATTACHMENTS]",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.reply))
		})
	}
}

func TestResolveStages(t *testing.T) {
	tests := []struct {
		name          string
		declared      string
		candidates    []FileRef
		expectMatch   bool
		expectedStage Stage
		expectedID    string
	}{
		{
			name:          "case-insensitive exact match",
			declared:      "Spec_Sheet.pdf",
			candidates:    []FileRef{{ID: "1", Name: "spec_sheet.pdf"}},
			expectMatch:   true,
			expectedStage: StageExact,
			expectedID:    "1",
		},
		{
			name:          "exact match ignores case only",
			declared:      "Spec Sheet.pdf",
			candidates:    []FileRef{{ID: "1", Name: "SPEC SHEET.PDF"}},
			expectMatch:   true,
			expectedStage: StageExact,
			expectedID:    "1",
		},
		{
			// Underscore versus space is punctuation drift, so this pair
			// falls through the exact stage and resolves as a substring.
			name:          "underscore versus space resolves as substring",
			declared:      "Spec_Sheet.pdf",
			candidates:    []FileRef{{ID: "1", Name: "spec sheet.pdf"}},
			expectMatch:   true,
			expectedStage: StageSubstring,
			expectedID:    "1",
		},
		{
			name:          "substring after stripping punctuation",
			declared:      "CLIN_0001_Drawing.pdf",
			candidates:    []FileRef{{ID: "2", Name: "clin0001-drawing-v2.PDF"}},
			expectMatch:   true,
			expectedStage: StageSubstring,
			expectedID:    "2",
		},
		{
			name:          "keyword overlap two of three tokens",
			declared:      "Wiring Diagram Rev B",
			candidates:    []FileRef{{ID: "3", Name: "Updated Wiring Diagram.pdf"}},
			expectMatch:   true,
			expectedStage: StageKeyword,
			expectedID:    "3",
		},
		{
			name:        "keyword overlap below threshold",
			declared:    "Wiring Diagram Rev B",
			candidates:  []FileRef{{ID: "4", Name: "Wiring Closet Inventory.xlsx"}},
			expectMatch: false,
		},
		{
			name:        "no candidates",
			declared:    "Spec_Sheet.pdf",
			candidates:  nil,
			expectMatch: false,
		},
		{
			name:     "exact wins over substring",
			declared: "Drawing.pdf",
			candidates: []FileRef{
				{ID: "sub", Name: "drawing-v2.pdf"},
				{ID: "exact", Name: "drawing.pdf"},
			},
			expectMatch:   true,
			expectedStage: StageExact,
			expectedID:    "exact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Resolve([]Recommendation{{DeclaredFilename: tt.declared}}, tt.candidates)
			require.Len(t, results, 1)

			result := results[0]
			assert.Equal(t, tt.declared, result.DeclaredFilename)
			if tt.expectMatch {
				require.NotNil(t, result.MatchedFile)
				assert.Equal(t, tt.expectedID, result.MatchedFile.ID)
				assert.Equal(t, tt.expectedStage, result.Stage)
			} else {
				assert.Nil(t, result.MatchedFile)
				assert.Equal(t, StageNone, result.Stage)
			}
		})
	}
}

func TestResolveNeverDropsRecommendations(t *testing.T) {
	recs := []Recommendation{
		{DeclaredFilename: "Found.pdf", Reason: "present"},
		{DeclaredFilename: "Missing Entirely.docx", Reason: "absent"},
	}
	candidates := []FileRef{{ID: "1", Name: "found.pdf"}}

	results := Resolve(recs, candidates)
	require.Len(t, results, 2)

	assert.NotNil(t, results[0].MatchedFile)
	assert.Nil(t, results[1].MatchedFile)
	assert.Equal(t, "absent", results[1].Reason)
}

func TestRecommendationsEndToEnd(t *testing.T) {
	reply := `Here's the draft.

[ATTACHMENTS]
filename: Spec_Sheet.pdf | reason: vendor asked for specs
filename: Wiring Diagram Rev B | reason: referenced in paragraph 2
[/ATTACHMENTS]

Let me know if you'd like changes.`

	candidates := []FileRef{
		{ID: "a", Name: "spec sheet.pdf", MimeType: "application/pdf"},
		{ID: "b", Name: "Updated Wiring Diagram.pdf", MimeType: "application/pdf"},
	}

	results := Recommendations(reply, candidates)
	require.Len(t, results, 2)
	require.NotNil(t, results[0].MatchedFile)
	assert.Equal(t, "a", results[0].MatchedFile.ID)
	require.NotNil(t, results[1].MatchedFile)
	assert.Equal(t, "b", results[1].MatchedFile.ID)
}

func TestKeywordTokens(t *testing.T) {
	// Tokens of length <= 2 are not significant.
	assert.Equal(t, []string{"wiring", "diagram", "rev"}, keywordTokens("Wiring Diagram Rev B"))
	assert.Equal(t, []string{"clin", "0001", "drawing", "pdf"}, keywordTokens("CLIN_0001_Drawing.pdf"))
	assert.Nil(t, keywordTokens("a b c"))
}
