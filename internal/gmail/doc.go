// Package gmail is a thin read-only adapter over the Gmail API. It loads a
// message or draft and condenses it into the subject snapshot a drafting
// session is seeded with, and lists attachment metadata. Thread management,
// sending, and label operations are out of scope.
package gmail
