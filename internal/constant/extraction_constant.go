package constant

import (
	"fmt"

	"recall-be/internal/entity"
)

// AnalysisStages is the fixed pipeline the simulated analysis walks through,
// one stage per tick, strictly in order.
var AnalysisStages = []string{"uploading", "analyzing", "extracting"}

var AnalysisStageLabels = map[string]string{
	"uploading":  "Uploading",
	"analyzing":  "Analyzing",
	"extracting": "Extracting decisions",
}

// AllowedDocumentExtensions is the upload filter. Content is never parsed,
// the filter is by extension only.
var AllowedDocumentExtensions = []string{".pdf", ".docx", ".txt"}

var DocumentTypes = []string{
	entity.DocumentTypeRFC,
	entity.DocumentTypeMeetingNotes,
	entity.DocumentTypePRD,
	entity.DocumentTypePostmortem,
	entity.DocumentTypeOther,
}

// DecisionTemplates are the canned extraction results. Real analysis is out
// of scope; each run re-mints these with fresh ids stamped with the staged
// file as source.
var DecisionTemplates = []entity.ExtractedDecision{
	{
		Id:         "ext-1",
		Title:      "Adopt microservices architecture for user service",
		Rationale:  "To improve scalability and enable independent deployment cycles, we decided to split the monolithic user service into separate microservices. This allows teams to work independently and reduces deployment risks.",
		Confidence: 92,
		Source:     "Platform_Redesign_RFC.pdf",
	},
	{
		Id:         "ext-2",
		Title:      "Implement OAuth 2.0 for authentication",
		Rationale:  "After security audit findings, we chose OAuth 2.0 over custom JWT implementation. This provides better security guarantees and reduces maintenance burden by leveraging proven standards.",
		Confidence: 88,
		Source:     "Platform_Redesign_RFC.pdf",
	},
	{
		Id:         "ext-3",
		Title:      "Use PostgreSQL for primary data store",
		Rationale:  "PostgreSQL was selected over MongoDB for its ACID compliance, strong consistency guarantees, and excellent support for complex queries. The relational model better fits our data structure.",
		Confidence: 85,
		Source:     "Platform_Redesign_RFC.pdf",
	},
}

const memoryPromptFormat = `Document type: %s
Source file: %s

Decision record: %s
Rationale: %s
Confidence: %d%%

Save this as institutional memory for this thread. Keep it concise and factual.`

// BuildMemoryPrompt renders the instruction sent to the thread backend when
// a decision is confirmed. Deterministic: same candidate, same prompt.
func BuildMemoryPrompt(documentType string, decision *entity.ExtractedDecision) string {
	return fmt.Sprintf(memoryPromptFormat,
		documentType,
		decision.Source,
		decision.Title,
		decision.Rationale,
		decision.Confidence,
	)
}
