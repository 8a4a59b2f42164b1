package images

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/transcribo/internal/models"
)

// Reconciler links locally-extracted assets to the figure entries of the
// conversion manifest. Matching is best-effort and never fails: the two
// producers number pages and images independently, so an asset that cannot
// be matched confidently is left uncaptioned rather than mislabeled.
type Reconciler struct {
	logger arbor.ILogger
}

// NewReconciler creates a new manifest reconciler
func NewReconciler(logger arbor.ILogger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Link returns a copy of assets with Caption/AltText filled in where a
// confident manifest match exists. A nil or empty manifest is a no-op.
//
// Matching rules per page:
//   - no figures on the asset's page: leave unlinked
//   - exactly one figure: link unconditionally, ignoring index disagreement
//   - multiple figures: link by the asset's own 1-based index into the
//     page's figure list; out-of-bounds indices stay unlinked
func (r *Reconciler) Link(assets []models.AssetMetadata, manifest *models.Manifest) []models.AssetMetadata {
	if manifest == nil || len(manifest.Figures) == 0 {
		return assets
	}

	figuresByPage := make(map[int][]models.Figure)
	for _, fig := range manifest.Figures {
		figuresByPage[fig.Page] = append(figuresByPage[fig.Page], fig)
	}

	linked := 0
	out := make([]models.AssetMetadata, 0, len(assets))
	for _, asset := range assets {
		figures := figuresByPage[asset.PageNumber]
		switch {
		case len(figures) == 0:
			// No manifest entry for this page.
		case len(figures) == 1:
			asset.Caption = figures[0].Caption
			asset.AltText = figures[0].Caption
			linked++
		default:
			if asset.Index >= 1 && asset.Index <= len(figures) {
				fig := figures[asset.Index-1]
				asset.Caption = fig.Caption
				asset.AltText = fig.Caption
				linked++
			}
		}
		out = append(out, asset)
	}

	r.logger.Debug().
		Int("assets", len(assets)).
		Int("figures", len(manifest.Figures)).
		Int("linked", linked).
		Msg("Reconciled extracted assets against manifest")

	return out
}
