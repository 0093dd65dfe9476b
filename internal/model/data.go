package model

import "time"

// ExportResult describes what a successful run wrote.
type ExportResult struct {
	Kind        OutputKind  `json:"kind"`
	Format      ImageFormat `json:"format,omitempty"`
	Destination string      `json:"destination"`
	Files       int         `json:"files"` // images written, or tiles placed for documents
	Pages       int         `json:"pages,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}
