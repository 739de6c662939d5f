// Package storage keeps raw resume files in object storage; only extracted
// text reaches the relational tables.
package storage

import (
	"context"
	"io"
	"time"
)

type ResumeStore interface {
	// Upload stores one resume object and returns its stored path.
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
	// Fetch reads a stored resume object back for re-extraction.
	Fetch(ctx context.Context, objectName string) ([]byte, error)
	// SignedGetURL produces a short-lived download link for dashboard users.
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}
