package drive

import "time"

// FileInfo represents metadata for a Drive file.
type FileInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MimeType       string    `json:"mimeType"`
	Size           int64     `json:"size,omitempty"`
	CreatedTime    time.Time `json:"createdTime,omitempty"`
	ModifiedTime   time.Time `json:"modifiedTime,omitempty"`
	WebViewLink    string    `json:"webViewLink,omitempty"`
	WebContentLink string    `json:"webContentLink,omitempty"`
}

// ListOptions controls file listing.
type ListOptions struct {
	// Query is a Drive search query, e.g. "'folderID' in parents"
	Query string

	// MaxResults limits the page size (default 100)
	MaxResults int

	// OrderBy sorts results, e.g. "name", "modifiedTime desc"
	OrderBy string

	// PageToken continues a previous listing
	PageToken string
}
