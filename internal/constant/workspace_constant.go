package constant

// Literals stamped onto ledger and timeline entries derived from extraction.
const (
	TimelineExtractionTitle  = "Decision extracted from document"
	TimelineExtractionAuthor = "Document Analysis"

	LedgerOutcomeSaved = "Saved to memory (thread) via /api/ask"
	LedgerAuthor       = "Recall"

	TagFromDocument = "From Document"
)
