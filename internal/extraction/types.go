package extraction

import (
	"encoding/json"
	"time"
)

// State bag keys used by the pipeline graph.
const (
	KeyDocumentRef  = "document_ref"
	KeyTempDir      = "temp_dir"
	KeyExtractState = "extract_state"
	KeyPageCount    = "page_count"
)

// PageImage is a rendered audit document page awaiting analysis.
type PageImage struct {
	PageNumber int
	ImagePath  string
}

// PageFinding holds the model's raw findings for a single page. Findings are
// kept as raw JSON so the consolidation prompt can replay them verbatim.
type PageFinding struct {
	PageNumber int             `json:"page_number"`
	Findings   json.RawMessage `json:"findings"`
}

// PipelineState accumulates across the extract stage. Each page prompt
// includes the findings gathered from all preceding pages.
type PipelineState struct {
	Pages    []PageImage   `json:"-"`
	Findings []PageFinding `json:"findings"`
	Raw      string        `json:"-"`
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Record      *Record
	RawResponse string
	PageCount   int
	CompletedAt time.Time
}
