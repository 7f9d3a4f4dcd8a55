package drive

import (
	"context"

	"github.com/draftdesk/draftdesk/internal/match"
)

// CandidateSource adapts a Drive folder listing to the attachment candidate
// set consumed by the session runner.
type CandidateSource struct {
	client   *Client
	folderID string
}

// NewCandidateSource binds a client to the folder holding the team's
// attachment library.
func NewCandidateSource(client *Client, folderID string) *CandidateSource {
	return &CandidateSource{
		client:   client,
		folderID: folderID,
	}
}

// ListCandidates returns file references for every file in the folder.
func (s *CandidateSource) ListCandidates(ctx context.Context) ([]match.FileRef, error) {
	files, err := s.client.ListFolder(ctx, s.folderID)
	if err != nil {
		return nil, err
	}
	return ToFileRefs(files), nil
}

// ToFileRefs converts Drive metadata to matcher file references.
func ToFileRefs(files []*FileInfo) []match.FileRef {
	refs := make([]match.FileRef, len(files))
	for i, f := range files {
		refs[i] = match.FileRef{
			ID:       f.ID,
			Name:     f.Name,
			MimeType: f.MimeType,
		}
	}
	return refs
}
