// -----------------------------------------------------------------------
// Conversion Models - Markdown conversion output and manifest types
// -----------------------------------------------------------------------

package models

// Figure is an image descriptor reported by the conversion model.
// Page and Index are 1-based and assigned by the model independently of
// the extractor's own numbering, so they are matching hints only.
type Figure struct {
	Page     int    `json:"page"`
	Index    int    `json:"index"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// TableRef is a table descriptor reported by the conversion model.
// Format is "markdown" or "tsv" (fenced TSV for wide tables).
type TableRef struct {
	Page   int    `json:"page"`
	Index  int    `json:"index"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format"`
}

// Manifest is the model's structural description of the document.
type Manifest struct {
	Figures []Figure   `json:"figures"`
	Tables  []TableRef `json:"tables"`
}

// EmptyManifest returns a manifest with non-nil, empty figure and table
// lists so it serializes as [] rather than null.
func EmptyManifest() Manifest {
	return Manifest{Figures: []Figure{}, Tables: []TableRef{}}
}

// ConversionResult is the consolidated output of the conversion pipeline.
// ExtractedImages is empty until reconciliation runs.
type ConversionResult struct {
	Markdown        string          `json:"markdown"`
	Manifest        Manifest        `json:"manifest"`
	ExtractedImages []AssetMetadata `json:"extracted_images,omitempty"`
}
