// -----------------------------------------------------------------------
// Conversion Backend Interface - Remote document-conversion capability
// -----------------------------------------------------------------------

package interfaces

import "context"

// ConversionBackend abstracts the remote AI document-conversion API.
// The two operations map to the provider's file upload and generation
// endpoints; the handle returned by UploadFile is opaque to callers.
// This interface allows different backends (Gemini, mocks for testing)
// to be used interchangeably.
type ConversionBackend interface {
	// UploadFile uploads a local file and returns an opaque file handle.
	UploadFile(ctx context.Context, path string) (string, error)

	// GenerateFromFile submits a generation request against an uploaded
	// file and returns the raw text output. The output is expected, but
	// not guaranteed, to be a JSON object matching the conversion contract.
	GenerateFromFile(ctx context.Context, handle, prompt string) (string, error)

	// DeleteFile removes an uploaded file from the remote provider.
	DeleteFile(ctx context.Context, handle string) error
}
