package conversion

// conversionPrompt is the fixed instruction describing the Markdown and
// manifest contract the remote model must produce. The placeholder naming
// convention matches the extractor's canonical filenames so placeholders
// and extracted assets can be reconciled by page and index.
const conversionPrompt = `You are a document conversion engine. Given the attached PDF, output:

1) A faithful Markdown conversion preserving hierarchy, lists, page anchors, and tables.
   - Use ATX headings (#, ##, ###) reflecting the original structure.
   - Convert tables to Markdown tables. For very wide tables, use a fenced block with TSV inside.
   - When you encounter images/figures, insert placeholders using this format:
     ![<short descriptive caption>](images/page-<PAGE_3DIGITS>-img-<IDX_2DIGITS>.png)
     Also include a figure caption line immediately after the image.
   - Add page anchors like: <a id="page-<PAGE_3DIGITS>"></a>

2) A compact JSON manifest listing each table and figure with page numbers and suggested filenames.

Return both as a JSON object with keys: {"markdown": str, "manifest": {"figures": [...], "tables": [...]}}.
`
