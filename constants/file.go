package constants

import "strings"

// ContentTypePDF routes a blob through the PDF page-text stripper.
// Anything else is decoded as UTF-8 text.
const ContentTypePDF = "application/pdf"

// BlobKinds are the two object-storage prefixes a document can own.
const (
	BlobMedicalHistory = "medical-history"
	BlobTreatmentPlan  = "treatment-plan"
)

// IsPDF reports whether a blob should be treated as PDF, by content type
// or by filename extension as a fallback.
func IsPDF(contentType, filename string) bool {
	if strings.EqualFold(strings.TrimSpace(contentType), ContentTypePDF) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
