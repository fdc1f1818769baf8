package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/gnegDev/path/constants"
)

// Document is an uploaded medical history (plus optional treatment plan)
// and its processing state. Status is set at creation and transitions
// exactly once to a terminal value; remediation is a fresh upload.
type Document struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Owner string    `gorm:"not null;index" json:"owner"`

	MedicalHistoryKey         string `gorm:"column:medical_history_key" json:"-"`
	MedicalHistoryFilename    string `gorm:"column:medical_history_filename" json:"medical_history_filename"`
	MedicalHistoryContentType string `gorm:"column:medical_history_content_type" json:"medical_history_content_type"`

	TreatmentPlanKey         *string `gorm:"column:treatment_plan_key" json:"-"`
	TreatmentPlanFilename    *string `gorm:"column:treatment_plan_filename" json:"treatment_plan_filename,omitempty"`
	TreatmentPlanContentType *string `gorm:"column:treatment_plan_content_type" json:"treatment_plan_content_type,omitempty"`

	Status       constants.DocumentStatus `gorm:"not null" json:"status"`
	ErrorMessage *string                  `gorm:"column:error_message" json:"error_message,omitempty"`

	ExtractedData *PatientData    `gorm:"foreignKey:DocumentID;references:ID" json:"extracted_data,omitempty"`
	Analysis      *AnalysisResult `gorm:"foreignKey:DocumentID;references:ID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Document) TableName() string { return "documents" }
