package models

import "fmt"

// AssetKind identifies the type of a reconstructed document asset.
type AssetKind string

const (
	AssetKindImage AssetKind = "image"
	AssetKindTable AssetKind = "table"
)

// AssetMetadata describes a single asset recovered from a source document.
// The extractor creates these with Caption/AltText unset; reconciliation
// returns copies with those fields filled in where a confident match exists.
type AssetMetadata struct {
	Kind         AssetKind `json:"kind"`
	OriginalPath string    `json:"original_path,omitempty"`
	StoredPath   string    `json:"stored_path"`
	AltText      string    `json:"alt_text,omitempty"`
	PageNumber   int       `json:"page_number,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Index        int       `json:"index,omitempty"`
}

// AssetFilename returns the canonical on-disk name for an extracted image.
// The extractor's page/index numbering is authoritative for file identity;
// filenames suggested by the conversion manifest are never trusted.
func AssetFilename(page, index int) string {
	return fmt.Sprintf("page-%03d-img-%02d.png", page, index)
}
