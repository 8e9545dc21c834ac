package domain

import "time"

// Document is one row of a keyword search result page.
// TotalCount carries the window aggregate COUNT(*) OVER() and is identical
// across every row of a page; it feeds pagination math only.
type Document struct {
	ID           string     `json:"id"`
	DocumentID   string     `json:"document_id"`
	Title        string     `json:"title"`
	DocumentType string     `json:"document_type"`
	ReleaseDate  *time.Time `json:"release_date"`
	SourceURL    string     `json:"source_url"`
	AISummary    string     `json:"ai_summary,omitempty"`
	TotalCount   int64      `json:"-"`
}

// SemanticMatch is one row of a nearest-neighbor result.
type SemanticMatch struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"document_id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"release_date"`
	Similarity  float64    `json:"similarity"`
}

// Entity is one extracted entity of a document analysis.
type Entity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Context    string  `json:"context,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the AI-derived enrichment of a document.
type Analysis struct {
	DocumentID       string   `json:"document_id"`
	Summary          string   `json:"summary"`
	Entities         []Entity `json:"entities"`
	ModelUsed        string   `json:"model_used"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
}

// AnalysisVersion tags rows in document_analyses; search joins on it.
const AnalysisVersion = "v2.0"
