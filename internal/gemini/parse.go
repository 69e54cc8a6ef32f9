package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"screenlens/internal/analysis"
	"screenlens/internal/models"
)

// Models are instructed to return bare JSON but routinely wrap it in
// markdown fences or prepend commentary anyway. Strict parsing comes
// first, then regex field recovery, then the raw-text fallback.

var (
	fenceRe       = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	ocrTextRe     = regexp.MustCompile(`"ocr_text"\s*:\s*("(?:[^"\\]|\\.)*")`)
	descriptionRe = regexp.MustCompile(`"image_description"\s*:\s*("(?:[^"\\]|\\.)*")`)
)

type analysisResponse struct {
	OCRText          string `json:"ocr_text"`
	ImageDescription string `json:"image_description"`
}

type similarityResponse struct {
	Similarities []models.SearchResult `json:"similarities"`
}

// stripFences unwraps a markdown code fence if the response is wrapped in
// one, otherwise returns the trimmed input.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}

// parseAnalysis recovers an analysis result from the model's response.
// Strict JSON first; then per-field regex extraction; as a last resort
// the raw text becomes the description with empty OCR text, so the
// caller always gets usable content.
func parseAnalysis(raw string) analysis.Analysis {
	cleaned := stripFences(raw)

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		return analysis.Analysis{
			OCRText:     parsed.OCRText,
			Description: parsed.ImageDescription,
		}
	}

	ocrText, ocrOK := extractQuoted(ocrTextRe, cleaned)
	description, descOK := extractQuoted(descriptionRe, cleaned)
	if ocrOK || descOK {
		return analysis.Analysis{OCRText: ocrText, Description: description}
	}

	return analysis.Analysis{Description: strings.TrimSpace(raw)}
}

// parseSimilarities recovers a ranked list from the model's response.
// Strict JSON first, then the bare array form, then an array carved out
// of surrounding text. Total failure yields an empty list, never an
// error.
func parseSimilarities(raw string) []models.SearchResult {
	cleaned := stripFences(raw)

	var parsed similarityResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil && parsed.Similarities != nil {
		return dropInvalid(parsed.Similarities)
	}

	var bare []models.SearchResult
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil {
		return dropInvalid(bare)
	}

	if start := strings.Index(cleaned, "["); start >= 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			if err := json.Unmarshal([]byte(cleaned[start:end+1]), &bare); err == nil {
				return dropInvalid(bare)
			}
		}
	}

	return []models.SearchResult{}
}

// extractQuoted pulls a JSON string field out of malformed JSON by regex
// and decodes its escapes.
func extractQuoted(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	var decoded string
	if err := json.Unmarshal([]byte(m[1]), &decoded); err != nil {
		return "", false
	}
	return decoded, true
}

// dropInvalid removes entries without an image id, which recovery paths
// can produce from partially valid arrays.
func dropInvalid(results []models.SearchResult) []models.SearchResult {
	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.ImageID != "" {
			out = append(out, r)
		}
	}
	return out
}
