package store

import "time"

// ExportRecord is one report document handed to an export sink.
type ExportRecord struct {
	Fingerprint string
	Summary     string
	FileName    string
	Location    string
	Charts      int
	ExportedAt  time.Time
}
