// Package storage defines the report archive: a place where every generated
// PDF statement is kept after it has been sent to the client.
package storage

import (
	"context"
	"errors"
)

// ErrArchiveDisabled is returned by NoopArchive.
var ErrArchiveDisabled = errors.New("report archive disabled")

// Archive defines the interface for report archive backends.
type Archive interface {
	// Put stores a rendered report under key.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - key: Object key, see ReportKey
	//   - body: PDF bytes
	//
	// Returns:
	//   - err: Error if the upload fails
	Put(ctx context.Context, key string, body []byte) error

	// Enabled reports whether Put actually stores anything.
	Enabled() bool
}

// NoopArchive is used when archiving is turned off.
type NoopArchive struct{}

// Put implements Archive.
func (NoopArchive) Put(ctx context.Context, key string, body []byte) error {
	return ErrArchiveDisabled
}

// Enabled implements Archive.
func (NoopArchive) Enabled() bool {
	return false
}

// Ensure NoopArchive implements Archive.
var _ Archive = NoopArchive{}
