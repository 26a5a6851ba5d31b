package models

import "time"

// StoredFile is upload metadata; the payload lives on disk under a generated
// name so user-supplied names never touch the filesystem.
type StoredFile struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	Name        string    `json:"name"`
	StoredName  string    `json:"-"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
