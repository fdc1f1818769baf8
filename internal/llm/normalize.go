package llm

import (
	"encoding/json"
	"strings"

	"github.com/gnegDev/path/internal/common"
)

// The raw response body is not guaranteed to be clean JSON: the envelope
// shape varies by endpoint family, and the assistant text may wrap the
// object in commentary or code fences. Normalization runs four steps:
// locate the assistant text, strip fencing, slice to the outermost braces,
// then decode tolerantly against the target payload type.

// DecodeExtraction normalizes a raw response body into an ExtractionPayload.
func DecodeExtraction(raw []byte) (*ExtractionPayload, error) {
	doc, err := isolateJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateAgainstSchema(ExtractionSchema(), []byte(doc)); err != nil {
		return nil, &common.NormalizationError{Reason: "payload does not match extraction schema", Slice: doc, Cause: err}
	}
	var p ExtractionPayload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, &common.NormalizationError{Reason: "malformed extraction payload", Slice: doc, Cause: err}
	}
	if p.TreatmentHistory == nil {
		p.TreatmentHistory = []TreatmentHistoryItem{}
	}
	if p.BiopsyResults == nil {
		p.BiopsyResults = []BiopsyResultItem{}
	}
	if p.Consultations == nil {
		p.Consultations = []ConsultationItem{}
	}
	if p.ImagingResults == nil {
		p.ImagingResults = []ImagingResultItem{}
	}
	return &p, nil
}

// DecodeAnalysis normalizes a raw response body into an AnalysisPayload.
func DecodeAnalysis(raw []byte) (*AnalysisPayload, error) {
	doc, err := isolateJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateAgainstSchema(AnalysisSchema(), []byte(doc)); err != nil {
		return nil, &common.NormalizationError{Reason: "payload does not match analysis schema", Slice: doc, Cause: err}
	}
	var p AnalysisPayload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, &common.NormalizationError{Reason: "malformed analysis payload", Slice: doc, Cause: err}
	}
	if p.Mismatches == nil {
		p.Mismatches = []MismatchItem{}
	}
	if p.Recommendations == nil {
		p.Recommendations = []string{}
	}
	if p.Sources == nil {
		p.Sources = []string{}
	}
	return &p, nil
}

func isolateJSON(raw []byte) (string, error) {
	text, err := OutputText(raw)
	if err != nil {
		return "", err
	}
	doc, err := ExtractJSONObject(text)
	if err != nil {
		return "", err
	}
	if !json.Valid([]byte(doc)) {
		return "", &common.NormalizationError{Reason: "malformed JSON", Slice: doc}
	}
	return doc, nil
}

// OutputText locates the assistant's text inside any of the known
// response envelope shapes, tried in a fixed order:
//
//	output[0].content[0].text   (responses API)
//	output[0].text              (responses API, flat variant)
//	output_text                 (responses API convenience field)
//	choices[0].message.content  (chat completions)
func OutputText(raw []byte) (string, error) {
	var env struct {
		Output []struct {
			Text    string `json:"text"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
		OutputText string `json:"output_text"`
		Choices    []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &common.NormalizationError{Reason: "no output text", Slice: snippet(raw, 512), Cause: err}
	}

	if len(env.Output) > 0 {
		if len(env.Output[0].Content) > 0 && env.Output[0].Content[0].Text != "" {
			return env.Output[0].Content[0].Text, nil
		}
		if env.Output[0].Text != "" {
			return env.Output[0].Text, nil
		}
	}
	if env.OutputText != "" {
		return env.OutputText, nil
	}
	if len(env.Choices) > 0 && env.Choices[0].Message.Content != "" {
		return env.Choices[0].Message.Content, nil
	}
	return "", &common.NormalizationError{Reason: "no output text", Slice: snippet(raw, 512)}
}

// ExtractJSONObject strips markdown fencing and slices the text to the
// span between the first '{' and the last '}'. The brace slice runs
// regardless of whether a fence was present, so leading or trailing prose
// degrades gracefully.
func ExtractJSONObject(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = stripFence(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", &common.NormalizationError{Reason: "no JSON object found", Slice: s}
	}
	return strings.TrimSpace(s[start : end+1]), nil
}

func stripFence(s string) string {
	if strings.HasPrefix(s, "```") {
		rest := s[3:]
		// A language tag (```json) occupies the remainder of the fence line.
		if i := strings.IndexByte(rest, '\n'); i >= 0 && isLangTag(rest[:i]) {
			rest = rest[i+1:]
		}
		s = rest
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	return s
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
