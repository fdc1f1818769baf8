package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// ExtractionPayload is the normalized shape we want from the extraction
// prompt. Every field is optional; the model returns null for anything the
// source text does not mention.
type ExtractionPayload struct {
	FioInitials      *string `json:"fio_initials"`
	DateOfBirth      *string `json:"date_of_birth"`
	DiagnosisPrimary *string `json:"diagnosis_primary"`
	Stage            *string `json:"stage"`
	Subtype          *string `json:"subtype"`

	TreatmentHistory []TreatmentHistoryItem `json:"treatment_history"`
	BiopsyResults    []BiopsyResultItem     `json:"biopsy_results"`
	Consultations    []ConsultationItem     `json:"consultations"`
	ImagingResults   []ImagingResultItem    `json:"imaging_results"`
}

type TreatmentHistoryItem struct {
	TreatmentType  *string `json:"treatment_type"`
	Description    *string `json:"description"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	OutcomeDynamic *string `json:"outcome_dynamic"`
	OutcomeDate    *string `json:"outcome_date"`
	Details        *string `json:"details"`
}

type BiopsyResultItem struct {
	Date          *string `json:"date"`
	Type          *string `json:"type"`
	ResultSummary *string `json:"result_summary"`
}

type ConsultationItem struct {
	Date           *string `json:"date"`
	Recommendation *string `json:"recommendation"`
}

type ImagingResultItem struct {
	Date     *string `json:"date"`
	Type     *string `json:"type"`
	Findings *string `json:"findings"`
}

// AnalysisPayload is the normalized shape of the treatment-optimality
// analysis. The model has been observed to misspell "recommendations";
// both spellings are accepted, the canonical one wins when both appear.
type AnalysisPayload struct {
	Optimal         *string        `json:"optimal"`
	Mismatches      []MismatchItem `json:"mismatches"`
	Recommendations []string       `json:"recommendations"`
	Sources         []string       `json:"sources"`
}

type MismatchItem struct {
	Type        *string `json:"type"`
	Current     *string `json:"current"`
	Recommended *string `json:"recommended"`
}

func (p *AnalysisPayload) UnmarshalJSON(b []byte) error {
	var aux struct {
		Optimal         *string        `json:"optimal"`
		Mismatches      []MismatchItem `json:"mismatches"`
		Recommendations []string       `json:"recommendations"`
		Recomendations  []string       `json:"recomendations"`
		Sources         []string       `json:"sources"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Optimal = aux.Optimal
	p.Mismatches = aux.Mismatches
	p.Recommendations = aux.Recommendations
	if p.Recommendations == nil {
		p.Recommendations = aux.Recomendations
	}
	p.Sources = aux.Sources
	return nil
}

// EndpointConfig identifies one LLM endpoint. Model selects a
// chat-completion request shape, PromptID a responses-style one.
type EndpointConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	PromptID string
	Project  string
}

// Request packages the endpoint parameters with one input text.
func (c EndpointConfig) Request(input string) CallRequest {
	base := strings.TrimRight(c.BaseURL, "/")
	req := CallRequest{
		APIKey:   c.APIKey,
		Model:    c.Model,
		PromptID: c.PromptID,
		Project:  c.Project,
		Input:    input,
	}
	if c.PromptID != "" {
		req.URL = base + "/responses"
	} else {
		req.URL = base + "/chat/completions"
	}
	return req
}

// CallRequest is one gateway invocation.
type CallRequest struct {
	URL      string
	APIKey   string
	Model    string
	PromptID string
	Project  string
	Input    string
}

// Gateway is the transport interface the pipelines depend on. It returns
// the raw response body and never interprets its content.
type Gateway interface {
	Call(ctx context.Context, req CallRequest) ([]byte, error)
}
