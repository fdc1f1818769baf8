package llm

import "strings"

// extractionSchemaBlock is the literal schema description embedded in the
// extraction prompt. Field names must match ExtractionPayload's JSON tags.
const extractionSchemaBlock = `{
  "fio_initials": "Initials of the patient's full name (e.g., N)",
  "date_of_birth": "Date of birth in the format DD.MM.YYYY",
  "diagnosis_primary": "Primary diagnosis (full text)",
  "stage": "Stage of the disease",
  "subtype": "Molecular subtype (e.g., Triple negative)",
  "treatment_history": [
    {
      "treatment_type": "Type of treatment (e.g., NAC, CT, CHT, IT, SLT, surgery)",
      "description": "Description of the regimen or procedure (e.g., 4AC + 12P, paclitaxel+carboplatin)",
      "start_date": "Start date in the format MM.YYYY or DD.MM.YYYY",
      "end_date": "End date in the format MM.YYYY or DD.MM.YYYY",
      "outcome_dynamic": "Dynamics based on the results of examinations (e.g., Positive dynamics, Progression, Negative dynamics)",
      "outcome_date": "Date of dynamics assessment (e.g., 08.2021)",
      "details": "Additional details, if any"
    }
  ],
  "biopsy_results": [
    {
      "date": "Date of biopsy/histology/IHC",
      "type": "Type of research (e.g., GI, IHC, MGI, TAB)",
      "result_summary": "Brief description of the results, including G-status, ER, PR, Her2, Ki67, mutations"
    }
  ],
  "consultations": [
    {
      "date": "Date of the consultation",
      "recommendation": "Recommended treatment or examination"
    }
  ],
  "imaging_results": [
    {
      "date": "Date of examination",
      "type": "Type of imaging (e.g., PET-CT, MRI GM, CT OGC)",
      "findings": "Key results and dynamics"
    }
  ]
}`

// BuildExtractionPrompt composes the schema-constrained extraction prompt
// for one medical-history text. Deterministic template filling only.
func BuildExtractionPrompt(medicalHistoryText string) string {
	var b strings.Builder
	b.WriteString("Your task is to extract the key medical information from the medical history text below and convert it into a structured JSON object.\n")
	b.WriteString("You must strictly follow the JSON schema. If a field does not apply or the text has no information for it, use null.\n\n")
	b.WriteString("### JSON SCHEMA:\n\n")
	b.WriteString(extractionSchemaBlock)
	b.WriteString("\n\nReturn ONLY a valid JSON object, starting with '{' and ending with '}'. Do not add explanations, markdown blocks, or any other text.\n\n")
	b.WriteString("### MEDICAL HISTORY:\n\n")
	b.WriteString(medicalHistoryText)
	return b.String()
}

// BuildAnalysisPrompt concatenates the two source texts under section
// banners. The treatment-plan section is included only when present.
func BuildAnalysisPrompt(medicalHistoryText, treatmentPlanText string) string {
	var b strings.Builder
	b.WriteString("=== MEDICAL HISTORY ===\n")
	b.WriteString(strings.TrimSpace(medicalHistoryText))
	if plan := strings.TrimSpace(treatmentPlanText); plan != "" {
		b.WriteString("\n\n=== TREATMENT PLAN ===\n")
		b.WriteString(plan)
	}
	return b.String()
}
