package document

import (
	"github.com/google/uuid"

	"github.com/gnegDev/path/internal/entity"
	"github.com/gnegDev/path/internal/llm"
)

// MapPatientData builds a brand-new PatientData graph for a document from
// a decoded extraction payload. Pure structural transform: null source
// fields propagate as null, absent arrays become empty collections, and
// each child carries its owning reference plus its payload position.
func MapPatientData(docID uuid.UUID, p *llm.ExtractionPayload) *entity.PatientData {
	data := &entity.PatientData{
		ID:               uuid.New(),
		DocumentID:       docID,
		FioInitials:      p.FioInitials,
		DateOfBirth:      p.DateOfBirth,
		DiagnosisPrimary: p.DiagnosisPrimary,
		Stage:            p.Stage,
		Subtype:          p.Subtype,
		TreatmentHistory: make([]entity.TreatmentHistoryEntry, 0, len(p.TreatmentHistory)),
		BiopsyResults:    make([]entity.BiopsyResultEntry, 0, len(p.BiopsyResults)),
		Consultations:    make([]entity.ConsultationEntry, 0, len(p.Consultations)),
		ImagingResults:   make([]entity.ImagingResultEntry, 0, len(p.ImagingResults)),
	}

	for i, t := range p.TreatmentHistory {
		data.TreatmentHistory = append(data.TreatmentHistory, entity.TreatmentHistoryEntry{
			ID:             uuid.New(),
			PatientDataID:  data.ID,
			Seq:            i,
			TreatmentType:  t.TreatmentType,
			Description:    t.Description,
			StartDate:      t.StartDate,
			EndDate:        t.EndDate,
			OutcomeDynamic: t.OutcomeDynamic,
			OutcomeDate:    t.OutcomeDate,
			Details:        t.Details,
		})
	}
	for i, b := range p.BiopsyResults {
		data.BiopsyResults = append(data.BiopsyResults, entity.BiopsyResultEntry{
			ID:            uuid.New(),
			PatientDataID: data.ID,
			Seq:           i,
			Date:          b.Date,
			Type:          b.Type,
			ResultSummary: b.ResultSummary,
		})
	}
	for i, c := range p.Consultations {
		data.Consultations = append(data.Consultations, entity.ConsultationEntry{
			ID:             uuid.New(),
			PatientDataID:  data.ID,
			Seq:            i,
			Date:           c.Date,
			Recommendation: c.Recommendation,
		})
	}
	for i, im := range p.ImagingResults {
		data.ImagingResults = append(data.ImagingResults, entity.ImagingResultEntry{
			ID:            uuid.New(),
			PatientDataID: data.ID,
			Seq:           i,
			Date:          im.Date,
			Type:          im.Type,
			Findings:      im.Findings,
		})
	}

	return data
}
