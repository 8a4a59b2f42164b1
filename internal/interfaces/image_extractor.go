// -----------------------------------------------------------------------
// Image Extractor Interface - Recover embedded images from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/transcribo/internal/models"
)

// ImageExtractor recovers embedded raster images from a PDF document.
//
// Implementations must isolate per-image failures: a single corrupt or
// unsupported image object is skipped, never aborting the document. Only
// a PDF container that cannot be opened is a fatal error.
type ImageExtractor interface {
	// ExtractImages writes every recoverable embedded image under outputDir
	// as a normalized PNG and returns their metadata in page-then-index order.
	ExtractImages(ctx context.Context, pdfPath, outputDir string) ([]models.AssetMetadata, error)
}
