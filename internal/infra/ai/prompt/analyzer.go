package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/lenscan/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a content-safety analyst for scanned barcode and QR code payloads. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- safety is exactly one of: safe, caution, danger, unknown.
- category is a short human-readable label (e.g. "Shortened URL", "Wi-Fi Credentials", "Food Product").
- summary is 1-3 plain sentences describing what the payload is and any risk.
- product_name and product_details are present only when the payload is a retail product number; otherwise omit them.
- sources is an array of {title, uri} citations; omit it when there are none.

Schema (example with empty values):
{
  "safety": "<safe|caution|danger|unknown>",
  "category": "<string>",
  "summary": "<string>",
  "product_name": "<string>",
  "product_details": "<string>",
  "sources": [{"title": "<string>", "uri": "<string>"}]
}`
}

// GetUserPrompt builds a compact user message around one decoded payload.
func GetUserPrompt(data, format string) string {
	return fmt.Sprintf("Analyze this scanned payload and respond with the JSON per schema. Symbology: %s. Payload: %s", format, data)
}

// maxFallbackSummary bounds the raw-text excerpt used when the model output
// cannot be parsed.
const maxFallbackSummary = 280

// Parse turns the model output into an Analysis. A malformed payload is not
// an error: it degrades to safety unknown with a best-effort summary taken
// from the raw response text.
func Parse(raw string) *analysis.Analysis {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var body struct {
		Safety         string `json:"safety"`
		Category       string `json:"category"`
		Summary        string `json:"summary"`
		ProductName    string `json:"product_name"`
		ProductDetails string `json:"product_details"`
		Sources        []struct {
			Title string `json:"title"`
			URI   string `json:"uri"`
		} `json:"sources"`
	}
	if err := json.Unmarshal([]byte(cleaned), &body); err != nil || body.Summary == "" {
		return analysis.Degraded("Analysis", fallbackSummary(raw))
	}

	out := &analysis.Analysis{
		Safety:         parseSafety(body.Safety),
		Category:       body.Category,
		Summary:        body.Summary,
		ProductName:    body.ProductName,
		ProductDetails: body.ProductDetails,
	}
	for _, s := range body.Sources {
		out.Sources = append(out.Sources, analysis.Source{Title: s.Title, URI: s.URI})
	}
	return out
}

func parseSafety(s string) analysis.Safety {
	switch analysis.Safety(strings.ToLower(strings.TrimSpace(s))) {
	case analysis.SafetySafe:
		return analysis.SafetySafe
	case analysis.SafetyCaution:
		return analysis.SafetyCaution
	case analysis.SafetyDanger:
		return analysis.SafetyDanger
	default:
		return analysis.SafetyUnknown
	}
}

func fallbackSummary(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "The analysis service returned an empty response."
	}
	if len(text) > maxFallbackSummary {
		text = text[:maxFallbackSummary] + "..."
	}
	return text
}
