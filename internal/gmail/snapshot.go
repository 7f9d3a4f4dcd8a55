package gmail

import (
	gmail "google.golang.org/api/gmail/v1"

	"github.com/draftdesk/draftdesk/internal/opportunity"
	"github.com/draftdesk/draftdesk/internal/session"
)

// SnapshotFromMessage builds the immutable subject snapshot a session is
// seeded with. Opportunity metadata is attached when the subject or, failing
// that, the body carries a recognizable solicitation number.
func SnapshotFromMessage(msg *gmail.Message) session.SubjectContext {
	subject := HeaderValue(msg, "Subject")
	body := MessageBody(msg)

	opp := opportunity.FromSubject(subject)
	if opp == nil {
		if number, ok := opportunity.ScanSolicitationNumber(body); ok {
			opp = &opportunity.Metadata{SolicitationNumber: number}
		}
	}

	return session.SubjectContext{
		Sender:      HeaderValue(msg, "From"),
		Recipient:   HeaderValue(msg, "To"),
		Subject:     subject,
		Body:        body,
		Opportunity: opp,
	}
}

// SubjectSnapshot loads a message and builds its subject snapshot.
func (c *Client) SubjectSnapshot(messageID string) (session.SubjectContext, error) {
	msg, err := c.GetMessage(messageID)
	if err != nil {
		return session.SubjectContext{}, err
	}
	return SnapshotFromMessage(msg), nil
}

// DraftSnapshot loads a draft and builds its subject snapshot. Drafts are
// outbound, so sender and recipient keep their header positions; the snapshot
// records the thread as the user sees it.
func (c *Client) DraftSnapshot(draftID string) (session.SubjectContext, error) {
	msg, err := c.GetDraftMessage(draftID)
	if err != nil {
		return session.SubjectContext{}, err
	}
	return SnapshotFromMessage(msg), nil
}
