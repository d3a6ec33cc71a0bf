package bucketlist

import "time"

// Photo is a reference to an image stored on the image host.
// A nil *Photo means "no photo"; a non-nil one always carries every field.
type Photo struct {
	URL        string    `json:"url"`
	FileRef    string    `json:"file_ref"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
	FileType   string    `json:"file_type"`
}

// Complete reports whether every field of the reference is present.
func (p *Photo) Complete() bool {
	return p != nil &&
		p.URL != "" &&
		p.FileRef != "" &&
		!p.UploadedAt.IsZero() &&
		p.FileType != ""
}

// Clone returns a copy that shares no memory with p.
func (p *Photo) Clone() *Photo {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
