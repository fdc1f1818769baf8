package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisResult is the treatment-optimality comparison for one completed
// document. At most one row exists per document; re-analysis replaces the
// whole graph inside a single transaction.
type AnalysisResult struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"document_id"`

	Optimal *string `json:"optimal"`

	Mismatches []MismatchEntry `gorm:"foreignKey:AnalysisResultID;references:ID;constraint:OnDelete:CASCADE" json:"mismatches"`

	Recommendations datatypes.JSONSlice[string] `json:"recommendations"`
	Sources         datatypes.JSONSlice[string] `json:"sources"`

	AnalyzedAt time.Time `gorm:"not null" json:"analyzed_at"`
}

func (AnalysisResult) TableName() string { return "analysis_results" }

// MismatchEntry is one discrepancy between the current and the recommended
// treatment, owned by an AnalysisResult. Seq preserves payload order.
type MismatchEntry struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	AnalysisResultID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Seq              int       `gorm:"not null" json:"-"`

	Type        *string `json:"type"`
	Current     *string `json:"current"`
	Recommended *string `json:"recommended"`
}

func (MismatchEntry) TableName() string { return "analysis_mismatches" }
