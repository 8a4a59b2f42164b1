// -----------------------------------------------------------------------
// Image Extractor Service - Recover embedded images from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	_ "golang.org/x/image/tiff"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/transcribo/internal/interfaces"
	"github.com/ternarybob/transcribo/internal/models"
)

// streamFilter is the compression scheme declared on an image stream.
// Multi-stage filter chains and anything unrecognized route to filterOther,
// which falls back to pdfcpu's generic image decoding.
type streamFilter int

const (
	filterOther streamFilter = iota
	filterDCT
	filterFlate
)

// imageResult is the per-image extraction outcome. Failed images carry an
// error instead of an asset and are logged and dropped by the caller, so a
// single corrupt image never aborts the document.
type imageResult struct {
	index int
	asset *models.AssetMetadata
	err   error
}

// Extractor implements the ImageExtractor interface using pdfcpu
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ImageExtractor = (*Extractor)(nil)

// NewExtractor creates a new image extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractImages walks the PDF's page/resource graph and writes every
// recoverable embedded image under outputDir as a normalized PNG.
//
// Opening the container is the only fatal failure. Per-image failures are
// logged and skipped; pages without image XObjects contribute nothing.
// Returned assets are in page-then-index order.
func (e *Extractor) ExtractImages(ctx context.Context, pdfPath, outputDir string) ([]models.AssetMetadata, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", pdfPath, err)
	}

	return e.extractFromContext(ctx, pdfCtx, pdfPath, outputDir)
}

// extractFromContext walks an already-read PDF context page by page,
// writing each recoverable image and skipping the rest.
func (e *Extractor) extractFromContext(ctx context.Context, pdfCtx *model.Context, pdfPath, outputDir string) ([]models.AssetMetadata, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	assets := make([]models.AssetMetadata, 0)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, result := range e.extractPageImages(pdfCtx, pageNr, outputDir) {
			if result.err != nil {
				e.logger.Warn().
					Err(result.err).
					Int("page", pageNr).
					Int("index", result.index).
					Msg("Skipping unrecoverable image")
				continue
			}
			assets = append(assets, *result.asset)
		}
	}

	e.logger.Info().
		Str("pdf", filepath.Base(pdfPath)).
		Int("pages", pdfCtx.PageCount).
		Int("images", len(assets)).
		Msg("Image extraction complete")

	return assets, nil
}

// extractPageImages extracts all image XObjects referenced by a single page.
// Object numbers are sorted so the per-page index assignment is stable
// across runs of the same document.
func (e *Extractor) extractPageImages(pdfCtx *model.Context, pageNr int, outputDir string) []imageResult {
	objNrs := pdfcpu.ImageObjNrs(pdfCtx, pageNr)
	if len(objNrs) == 0 {
		return nil
	}
	sort.Ints(objNrs)

	results := make([]imageResult, 0, len(objNrs))
	index := 0
	for _, objNr := range objNrs {
		entry, ok := pdfCtx.Table[objNr]
		if !ok || entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype := sd.Subtype(); subtype == nil || *subtype != "Image" {
			continue
		}

		index++
		asset, err := e.extractImageObject(pdfCtx, &sd, objNr, pageNr, index, outputDir)
		results = append(results, imageResult{index: index, asset: asset, err: err})
	}

	return results
}

// extractImageObject reconstructs a single image XObject and writes it to
// disk under the canonical page/index filename.
func (e *Extractor) extractImageObject(pdfCtx *model.Context, sd *types.StreamDict, objNr, pageNr, index int, outputDir string) (*models.AssetMetadata, error) {
	img, err := e.decodeImage(pdfCtx, sd, objNr)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(outputDir, models.AssetFilename(pageNr, index))
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to encode PNG %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", outPath, err)
	}

	// Post-write validation: the file must exist with non-zero size.
	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("image write produced no data at %s", outPath)
	}

	return &models.AssetMetadata{
		Kind:       models.AssetKindImage,
		StoredPath: outPath,
		PageNumber: pageNr,
		Index:      index,
	}, nil
}

// decodeImage dispatches on the stream's declared filter and returns a
// decoded raster ready for PNG encoding.
func (e *Extractor) decodeImage(pdfCtx *model.Context, sd *types.StreamDict, objNr int) (image.Image, error) {
	switch detectFilter(sd) {
	case filterDCT:
		// The raw stream is already a valid JPEG; decode it directly.
		img, err := jpeg.Decode(bytes.NewReader(sd.Raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode DCT image stream: %w", err)
		}
		return img, nil

	case filterFlate:
		// Raw 8-bit samples; anything else goes through the generic path.
		if bpc := sd.IntEntry("BitsPerComponent"); bpc != nil && *bpc != 8 {
			return e.decodeGeneric(pdfCtx, sd, objNr)
		}
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("failed to decompress image samples: %w", err)
		}
		width := sd.IntEntry("Width")
		height := sd.IntEntry("Height")
		if width == nil || height == nil {
			return nil, fmt.Errorf("image stream missing Width/Height")
		}
		return rasterFromSamples(sd.Content, *width, *height, componentsForColorSpace(sd))

	default:
		return e.decodeGeneric(pdfCtx, sd, objNr)
	}
}

// decodeGeneric falls back to pdfcpu's own image extraction, which handles
// indexed/palette color spaces and less common encodings, then re-decodes
// the produced image so it can be normalized to PNG.
func (e *Extractor) decodeGeneric(pdfCtx *model.Context, sd *types.StreamDict, objNr int) (image.Image, error) {
	extracted, err := pdfcpu.ExtractImage(pdfCtx, sd, false, fmt.Sprintf("Im%d", objNr), objNr, false)
	if err != nil {
		return nil, fmt.Errorf("generic image extraction failed: %w", err)
	}
	if extracted == nil {
		return nil, fmt.Errorf("generic image extraction returned no data")
	}

	img, _, err := image.Decode(extracted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted %s image: %w", extracted.FileType, err)
	}
	return img, nil
}

// detectFilter maps the stream's Filter entry onto the closed filter set.
// Filter may be a single name or an array; only single-stage DCT/Flate
// streams take the dedicated paths.
func detectFilter(sd *types.StreamDict) streamFilter {
	obj, found := sd.Find("Filter")
	if !found {
		return filterOther
	}

	var name types.Name
	switch v := obj.(type) {
	case types.Name:
		name = v
	case types.Array:
		if len(v) == 1 {
			if n, ok := v[0].(types.Name); ok {
				name = n
			}
		}
	}

	switch name {
	case "DCTDecode":
		return filterDCT
	case "FlateDecode":
		return filterFlate
	}
	return filterOther
}

// componentsForColorSpace returns the samples-per-pixel count for the
// image's color space. Unknown and non-name color spaces (ICC profiles,
// indexed palettes) default to RGB.
func componentsForColorSpace(sd *types.StreamDict) int {
	obj, found := sd.Find("ColorSpace")
	if !found {
		return 3
	}
	name, ok := obj.(types.Name)
	if !ok {
		return 3
	}
	switch name {
	case "DeviceGray":
		return 1
	case "DeviceCMYK":
		return 4
	default:
		return 3
	}
}

// rasterFromSamples builds an image from a flat buffer of 8-bit samples.
// The buffer must hold at least width*height*components bytes; malformed
// PDFs do produce short buffers, which are rejected rather than read out
// of bounds.
func rasterFromSamples(data []byte, width, height, components int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	need := width * height * components
	if len(data) < need {
		return nil, fmt.Errorf("insufficient image data: have %d bytes, need %d", len(data), need)
	}

	rect := image.Rect(0, 0, width, height)
	switch components {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, data[:need])
		return img, nil
	case 4:
		img := image.NewCMYK(rect)
		copy(img.Pix, data[:need])
		return img, nil
	default:
		img := image.NewRGBA(rect)
		for i := 0; i < width*height; i++ {
			img.Pix[i*4+0] = data[i*3+0]
			img.Pix[i*4+1] = data[i*3+1]
			img.Pix[i*4+2] = data[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	}
}
