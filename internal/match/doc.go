// Package match parses attachment recommendations out of free-form AI reply
// text and fuzzily resolves them against a candidate file listing.
//
// Recommendations arrive inside a delimited block:
//
//	[ATTACHMENTS]
//	filename: Spec_Sheet.pdf | reason: referenced in the RFQ
//	[/ATTACHMENTS]
//
// A missing block or a literal "none" line yields an empty list. Resolution
// tries three stages in strict precedence order: case-insensitive equality,
// punctuation-stripped substring, and keyword overlap. Recommendations that
// resolve to no candidate keep a nil MatchedFile and are surfaced rather than
// dropped, so the user can always see what the model asked for.
//
// Everything in this package is pure and deterministic; it performs no I/O.
package match
