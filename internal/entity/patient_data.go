package entity

import (
	"github.com/google/uuid"
)

// PatientData is the structured record extracted from one document.
// All scalar fields are free text and nullable: the extractor propagates
// whatever the source text yields, with no business validation.
type PatientData struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"document_id"`

	FioInitials      *string `gorm:"column:fio_initials" json:"fio_initials"`
	DateOfBirth      *string `gorm:"column:date_of_birth" json:"date_of_birth"`
	DiagnosisPrimary *string `gorm:"column:diagnosis_primary" json:"diagnosis_primary"`
	Stage            *string `json:"stage"`
	Subtype          *string `json:"subtype"`

	TreatmentHistory []TreatmentHistoryEntry `gorm:"foreignKey:PatientDataID;references:ID;constraint:OnDelete:CASCADE" json:"treatment_history"`
	BiopsyResults    []BiopsyResultEntry     `gorm:"foreignKey:PatientDataID;references:ID;constraint:OnDelete:CASCADE" json:"biopsy_results"`
	Consultations    []ConsultationEntry     `gorm:"foreignKey:PatientDataID;references:ID;constraint:OnDelete:CASCADE" json:"consultations"`
	ImagingResults   []ImagingResultEntry    `gorm:"foreignKey:PatientDataID;references:ID;constraint:OnDelete:CASCADE" json:"imaging_results"`
}

func (PatientData) TableName() string { return "patient_data" }

// Child rows hold scalar text plus an owning back-reference only; they are
// never traversed sibling-to-sibling. Seq preserves payload order.

type TreatmentHistoryEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	PatientDataID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Seq           int       `gorm:"not null" json:"-"`

	TreatmentType  *string `gorm:"column:treatment_type" json:"treatment_type"`
	Description    *string `json:"description"`
	StartDate      *string `gorm:"column:start_date" json:"start_date"`
	EndDate        *string `gorm:"column:end_date" json:"end_date"`
	OutcomeDynamic *string `gorm:"column:outcome_dynamic" json:"outcome_dynamic"`
	OutcomeDate    *string `gorm:"column:outcome_date" json:"outcome_date"`
	Details        *string `json:"details"`
}

func (TreatmentHistoryEntry) TableName() string { return "treatment_history_entries" }

type BiopsyResultEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	PatientDataID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Seq           int       `gorm:"not null" json:"-"`

	Date          *string `json:"date"`
	Type          *string `json:"type"`
	ResultSummary *string `gorm:"column:result_summary" json:"result_summary"`
}

func (BiopsyResultEntry) TableName() string { return "biopsy_result_entries" }

type ConsultationEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	PatientDataID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Seq           int       `gorm:"not null" json:"-"`

	Date           *string `json:"date"`
	Recommendation *string `json:"recommendation"`
}

func (ConsultationEntry) TableName() string { return "consultation_entries" }

type ImagingResultEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	PatientDataID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Seq           int       `gorm:"not null" json:"-"`

	Date     *string `json:"date"`
	Type     *string `json:"type"`
	Findings *string `json:"findings"`
}

func (ImagingResultEntry) TableName() string { return "imaging_result_entries" }
