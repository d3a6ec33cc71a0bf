package bucketlist

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/repositories"
)

// Collection is the document collection holding every item.
const Collection = "bucketlist"

// Document field names. These match what existing lists already store.
const (
	fieldTitle            = "title"
	fieldDescription      = "description"
	fieldCompleted        = "completed"
	fieldCreatedAt        = "createdAt"
	fieldCompletedAt      = "completedAt"
	fieldSuggestedBy      = "suggestedBy"
	fieldSuggestedByEmail = "suggestedByEmail"
	fieldPhotoURL         = "photoUrl"
	fieldPhotoMetadata    = "photoMetadata"
	fieldComments         = "comments"
	commentKeyID          = "id"
)

// photoMetadata names the file reference publicId on item photos and fileId
// on comment photos. Either is accepted on read.
type photoMetadata struct {
	FileID     string                  `json:"fileId,omitempty"`
	PublicID   string                  `json:"publicId,omitempty"`
	UploadedAt *repositories.Timestamp `json:"uploadedAt,omitempty"`
	UploadedBy string                  `json:"uploadedBy"`
	FileType   string                  `json:"fileType"`
}

type commentDocument struct {
	ID            string                  `json:"id"`
	Text          string                  `json:"text"`
	CreatedAt     *repositories.Timestamp `json:"createdAt,omitempty"`
	AuthorName    string                  `json:"authorName"`
	AuthorEmail   string                  `json:"authorEmail"`
	PhotoURL      string                  `json:"photoUrl,omitempty"`
	PhotoMetadata *photoMetadata          `json:"photoMetadata,omitempty"`
}

type itemDocument struct {
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Completed        bool                    `json:"completed"`
	CreatedAt        *repositories.Timestamp `json:"createdAt,omitempty"`
	CompletedAt      *repositories.Timestamp `json:"completedAt,omitempty"`
	SuggestedBy      string                  `json:"suggestedBy"`
	SuggestedByEmail string                  `json:"suggestedByEmail"`
	PhotoURL         string                  `json:"photoUrl,omitempty"`
	PhotoMetadata    *photoMetadata          `json:"photoMetadata,omitempty"`
	Comments         []commentDocument       `json:"comments"`
}

// decodeResult carries an item plus what the codec had to discard.
type decodeResult struct {
	item          models.Item
	partialPhotos int
}

// decodeItem converts a stored document into an Item. Fields decode through
// JSON so values written by any client land in the typed document.
func decodeItem(doc repositories.Document) (decodeResult, error) {
	var raw itemDocument
	if err := remarshal(doc.Fields, &raw); err != nil {
		return decodeResult{}, fmt.Errorf("decode item %s: %w", doc.ID, err)
	}

	res := decodeResult{}
	item := models.Item{
		ID:               doc.ID,
		Title:            raw.Title,
		Description:      raw.Description,
		Completed:        raw.Completed,
		CreatedAt:        timeOf(raw.CreatedAt),
		SuggestedBy:      raw.SuggestedBy,
		SuggestedByEmail: raw.SuggestedByEmail,
		Revision:         doc.Revision,
		Comments:         make([]models.Comment, 0, len(raw.Comments)),
	}
	if raw.CompletedAt != nil && !raw.CompletedAt.IsZero() {
		t := raw.CompletedAt.Time()
		item.CompletedAt = &t
	}

	var partial bool
	item.Photo, partial = decodePhoto(raw.PhotoURL, raw.PhotoMetadata)
	if partial {
		res.partialPhotos++
	}

	for _, c := range raw.Comments {
		comment, partial := decodeComment(c)
		if partial {
			res.partialPhotos++
		}
		item.Comments = append(item.Comments, comment)
	}

	res.item = item
	return res, nil
}

func decodeComment(c commentDocument) (models.Comment, bool) {
	photo, partial := decodePhoto(c.PhotoURL, c.PhotoMetadata)
	return models.Comment{
		ID:          c.ID,
		Text:        c.Text,
		CreatedAt:   timeOf(c.CreatedAt),
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Photo:       photo,
	}, partial
}

// decodePhoto never returns half a photo. partial is true when something
// was stored but not enough to form a complete reference.
func decodePhoto(url string, meta *photoMetadata) (photo *models.Photo, partial bool) {
	if url == "" && meta == nil {
		return nil, false
	}
	if url == "" || meta == nil {
		return nil, true
	}
	p := &models.Photo{
		URL:        url,
		FileRef:    meta.fileRef(),
		UploadedAt: timeOf(meta.UploadedAt),
		UploadedBy: meta.UploadedBy,
		FileType:   meta.FileType,
	}
	if !p.Complete() {
		return nil, true
	}
	return p, false
}

func (m *photoMetadata) fileRef() string {
	if m.FileID != "" {
		return m.FileID
	}
	return m.PublicID
}

func encodeComment(c models.Comment) commentDocument {
	doc := commentDocument{
		ID:          c.ID,
		Text:        c.Text,
		CreatedAt:   timestampOf(c.CreatedAt),
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
	}
	if c.Photo != nil {
		doc.PhotoURL = c.Photo.URL
		doc.PhotoMetadata = encodePhotoMetadata(c.Photo)
	}
	return doc
}

func encodeComments(comments []models.Comment) []commentDocument {
	out := make([]commentDocument, 0, len(comments))
	for _, c := range comments {
		out = append(out, encodeComment(c))
	}
	return out
}

func encodePhotoMetadata(p *models.Photo) *photoMetadata {
	return &photoMetadata{
		FileID:     p.FileRef,
		UploadedAt: timestampOf(p.UploadedAt),
		UploadedBy: p.UploadedBy,
		FileType:   p.FileType,
	}
}

// photoFields returns the two item fields carrying a photo reference.
func photoFields(p *models.Photo) repositories.Fields {
	meta := encodePhotoMetadata(p)
	meta.PublicID, meta.FileID = meta.FileID, ""
	return repositories.Fields{
		fieldPhotoURL:      p.URL,
		fieldPhotoMetadata: meta,
	}
}

// newItemFields builds the document for a freshly created item.
func newItemFields(title, description string, author models.Actor, photo *models.Photo, createdAt time.Time) repositories.Fields {
	fields := repositories.Fields{
		fieldTitle:            title,
		fieldDescription:      description,
		fieldCompleted:        false,
		fieldCreatedAt:        repositories.FromTime(createdAt),
		fieldSuggestedBy:      author.Snapshot(),
		fieldSuggestedByEmail: author.Email,
		fieldComments:         []commentDocument{},
	}
	if photo != nil {
		for k, v := range photoFields(photo) {
			fields[k] = v
		}
	}
	return fields
}

// photoFromUpload turns an image host result into a photo reference.
func photoFromUpload(url, fileID, format, filename, uploader string, at time.Time) *models.Photo {
	fileType := strings.ToLower(strings.TrimPrefix(format, "."))
	if fileType == "" {
		fileType = strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	}
	return &models.Photo{
		URL:        url,
		FileRef:    fileID,
		UploadedAt: at.UTC(),
		UploadedBy: uploader,
		FileType:   fileType,
	}
}

func timeOf(ts *repositories.Timestamp) time.Time {
	if ts == nil || ts.IsZero() {
		return time.Time{}
	}
	return ts.Time()
}

func timestampOf(t time.Time) *repositories.Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := repositories.FromTime(t)
	return &ts
}

func remarshal(in interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
