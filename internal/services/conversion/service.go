// -----------------------------------------------------------------------
// Conversion Service - PDF processing pipeline orchestration
// -----------------------------------------------------------------------

package conversion

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/transcribo/internal/interfaces"
	"github.com/ternarybob/transcribo/internal/models"
	"github.com/ternarybob/transcribo/internal/services/images"
)

// Service orchestrates one document through the full conversion pipeline:
// upload, structured conversion, Markdown persistence, image extraction,
// and manifest reconciliation.
type Service struct {
	client     *Client
	extractor  interfaces.ImageExtractor
	reconciler *images.Reconciler
	logger     arbor.ILogger
}

// NewService creates the conversion pipeline service.
func NewService(client *Client, extractor interfaces.ImageExtractor, reconciler *images.Reconciler, logger arbor.ILogger) *Service {
	return &Service{
		client:     client,
		extractor:  extractor,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Process runs the complete pipeline for one PDF and returns the
// consolidated result.
//
// The conversion stages (upload, generation, Markdown write) are fatal on
// failure: without Markdown there is nothing worth persisting. Image
// extraction and reconciliation are not: their failures are logged and the
// result carries an empty asset list, because the Markdown deliverable has
// already succeeded independently.
func (s *Service) Process(ctx context.Context, pdfPath, reportDir string) (*models.ConversionResult, error) {
	docID := uuid.New().String()
	log := s.logger.WithCorrelationId(docID)

	log.Info().
		Str("pdf", filepath.Base(pdfPath)).
		Str("report_dir", reportDir).
		Msg("Starting PDF conversion pipeline")

	handle, err := s.client.Upload(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("upload stage failed: %w", err)
	}
	// Uploaded medical documents should not outlive the conversion.
	defer s.client.Cleanup(ctx, handle)

	result, err := s.client.Convert(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("conversion stage failed: %w", err)
	}

	if _, err := s.client.SaveMarkdown(result.Markdown, reportDir); err != nil {
		return nil, fmt.Errorf("markdown persistence failed: %w", err)
	}

	result.ExtractedImages = s.extractAndReconcile(ctx, log, pdfPath, reportDir, result)

	log.Info().
		Int("figures", len(result.Manifest.Figures)).
		Int("images", len(result.ExtractedImages)).
		Int("markdown_bytes", len(result.Markdown)).
		Msg("PDF conversion pipeline complete")

	return result, nil
}

// extractAndReconcile runs the non-fatal half of the pipeline. Any failure
// here degrades to an empty asset list; raw extractor errors never escape
// this boundary.
func (s *Service) extractAndReconcile(ctx context.Context, log arbor.ILogger, pdfPath, reportDir string, result *models.ConversionResult) []models.AssetMetadata {
	imagesDir := filepath.Join(reportDir, "images")

	assets, err := s.extractor.ExtractImages(ctx, pdfPath, imagesDir)
	if err != nil {
		log.Warn().Err(err).Msg("Image extraction failed, continuing without images")
		return []models.AssetMetadata{}
	}

	linked := s.reconciler.Link(assets, &result.Manifest)

	stored := make([]string, 0, len(linked))
	for _, asset := range linked {
		stored = append(stored, asset.StoredPath)
	}
	if missing := s.reconciler.AuditPlaceholders(result.Markdown, stored); len(missing) > 0 {
		log.Warn().
			Int("count", len(missing)).
			Strs("placeholders", missing).
			Msg("Markdown references images that were not extracted")
	}

	return linked
}
