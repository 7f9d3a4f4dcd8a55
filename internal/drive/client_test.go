package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
)

func TestConvertToFileInfo(t *testing.T) {
	f := &drive.File{
		Id:             "file-1",
		Name:           "Past_Performance.pdf",
		MimeType:       "application/pdf",
		Size:           120000,
		CreatedTime:    "2026-05-01T10:00:00Z",
		ModifiedTime:   "2026-06-12T08:30:00Z",
		WebViewLink:    "https://drive.google.com/file/d/file-1/view",
		WebContentLink: "https://drive.google.com/uc?id=file-1&export=download",
	}

	info := convertToFileInfo(f)

	assert.Equal(t, "file-1", info.ID)
	assert.Equal(t, "Past_Performance.pdf", info.Name)
	assert.Equal(t, "application/pdf", info.MimeType)
	assert.Equal(t, int64(120000), info.Size)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), info.CreatedTime)
	assert.Equal(t, time.Date(2026, 6, 12, 8, 30, 0, 0, time.UTC), info.ModifiedTime)
}

func TestConvertToFileInfoBadTimestamps(t *testing.T) {
	info := convertToFileInfo(&drive.File{
		Id:           "file-2",
		Name:         "sow.docx",
		CreatedTime:  "not-a-time",
		ModifiedTime: "",
	})

	assert.True(t, info.CreatedTime.IsZero())
	assert.True(t, info.ModifiedTime.IsZero())
}

func TestDownloadURLFor(t *testing.T) {
	tests := []struct {
		name string
		file *FileInfo
		want string
	}{
		{
			name: "prefers content link",
			file: &FileInfo{ID: "f1", WebContentLink: "https://drive.google.com/uc?id=f1&export=download"},
			want: "https://drive.google.com/uc?id=f1&export=download",
		},
		{
			name: "falls back to uc endpoint",
			file: &FileInfo{ID: "f2"},
			want: "https://drive.google.com/uc?export=download&id=f2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, downloadURLFor(tt.file))
		})
	}
}

func TestToFileRefs(t *testing.T) {
	files := []*FileInfo{
		{ID: "a", Name: "Capability Statement.pdf", MimeType: "application/pdf"},
		{ID: "b", Name: "Pricing_Sheet.xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}

	refs := ToFileRefs(files)

	require.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].ID)
	assert.Equal(t, "Capability Statement.pdf", refs[0].Name)
	assert.Equal(t, "b", refs[1].ID)
}

func TestToFileRefsEmpty(t *testing.T) {
	assert.Empty(t, ToFileRefs(nil))
}
