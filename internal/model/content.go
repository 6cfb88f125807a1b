package model

import "time"

const (
	ContentTypeVideo   = "video"
	ContentTypeWebsite = "website"
)

// ContentItem is a globally shared piece of content. Video items carry a
// stored media file reference; website items carry a URL and a fixed display
// duration in seconds. Completeness is checked at resolution time, not at
// write time.
type ContentItem struct {
	ID          int       `db:"id"           json:"id"`
	Title       string    `db:"title"        json:"title"`
	ContentType string    `db:"content_type" json:"content_type"`
	VideoFile   *string   `db:"video_file"   json:"video_file,omitempty"`
	URL         *string   `db:"url"          json:"url,omitempty"`
	Duration    *int      `db:"duration"     json:"duration,omitempty"`
	UploadedAt  time.Time `db:"uploaded_at"  json:"uploaded_at"`
}
