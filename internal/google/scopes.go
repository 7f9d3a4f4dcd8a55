package google

// DefaultOAuthScopes are the Google OAuth scopes draftdesk needs.
//
// The session core only reads: Gmail messages and drafts feed the subject
// snapshot, and Drive listings feed the attachment candidate set. Nothing is
// sent or modified through these clients.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes: message and draft reads only
	"https://www.googleapis.com/auth/gmail.readonly",

	// Google Drive scope: candidate file listings and download links
	"https://www.googleapis.com/auth/drive.readonly",
}
