package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/transcribo/internal/models"
)

func TestReconciler_Link_SingleFigurePage(t *testing.T) {
	reconciler := NewReconciler(arbor.NewLogger())

	// One figure on the page links regardless of index disagreement.
	assets := []models.AssetMetadata{
		{Kind: models.AssetKindImage, StoredPath: "page-003-img-05.png", PageNumber: 3, Index: 5},
	}
	manifest := &models.Manifest{
		Figures: []models.Figure{
			{Page: 3, Index: 1, Caption: "X-ray"},
		},
	}

	linked := reconciler.Link(assets, manifest)

	assert.Len(t, linked, 1)
	assert.Equal(t, "X-ray", linked[0].Caption)
	assert.Equal(t, "X-ray", linked[0].AltText)
}

func TestReconciler_Link_MultiFigurePositional(t *testing.T) {
	reconciler := NewReconciler(arbor.NewLogger())

	assets := []models.AssetMetadata{
		{Kind: models.AssetKindImage, PageNumber: 2, Index: 1},
		{Kind: models.AssetKindImage, PageNumber: 2, Index: 2},
		{Kind: models.AssetKindImage, PageNumber: 2, Index: 3},
	}
	manifest := &models.Manifest{
		Figures: []models.Figure{
			{Page: 2, Index: 1, Caption: "A"},
			{Page: 2, Index: 2, Caption: "B"},
		},
	}

	linked := reconciler.Link(assets, manifest)

	assert.Equal(t, "A", linked[0].Caption)
	assert.Equal(t, "B", linked[1].Caption)
	// Index 3 is out of bounds for a two-figure page: left unlinked
	// rather than guessed.
	assert.Empty(t, linked[2].Caption)
	assert.Empty(t, linked[2].AltText)
}

func TestReconciler_Link_PageWithoutFigures(t *testing.T) {
	reconciler := NewReconciler(arbor.NewLogger())

	assets := []models.AssetMetadata{
		{Kind: models.AssetKindImage, PageNumber: 7, Index: 1},
	}
	manifest := &models.Manifest{
		Figures: []models.Figure{
			{Page: 1, Index: 1, Caption: "Elsewhere"},
		},
	}

	linked := reconciler.Link(assets, manifest)

	assert.Len(t, linked, 1)
	assert.Empty(t, linked[0].Caption)
}

func TestReconciler_Link_AbsentManifest(t *testing.T) {
	reconciler := NewReconciler(arbor.NewLogger())

	assets := []models.AssetMetadata{
		{Kind: models.AssetKindImage, PageNumber: 1, Index: 1},
	}

	tests := []struct {
		name     string
		manifest *models.Manifest
	}{
		{name: "Nil manifest", manifest: nil},
		{name: "Empty figures", manifest: &models.Manifest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linked := reconciler.Link(assets, tt.manifest)
			assert.Equal(t, assets, linked)
		})
	}
}

func TestReconciler_Link_DoesNotMutateInput(t *testing.T) {
	reconciler := NewReconciler(arbor.NewLogger())

	assets := []models.AssetMetadata{
		{Kind: models.AssetKindImage, PageNumber: 1, Index: 1},
	}
	manifest := &models.Manifest{
		Figures: []models.Figure{
			{Page: 1, Index: 1, Caption: "Linked"},
		},
	}

	linked := reconciler.Link(assets, manifest)

	assert.Equal(t, "Linked", linked[0].Caption)
	assert.Empty(t, assets[0].Caption, "reconciliation must copy, not mutate")
}
