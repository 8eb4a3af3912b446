// Package models defines the file-level types shared by storage and index.
package models

import "time"

// IngotMeta is what a directory listing knows about one ingot file without
// parsing it.
type IngotMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
