package analysis

// Safety enum
type Safety string

const (
	SafetySafe    Safety = "safe"
	SafetyCaution Safety = "caution"
	SafetyDanger  Safety = "danger"
	SafetyUnknown Safety = "unknown"
)

// Source is one citation backing an analysis.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// MaxDisplaySources caps how many sources the presentation layer shows.
// Storage keeps the full list.
const MaxDisplaySources = 3

// Analysis is the enrichment payload attached to a scan result. Once set on
// a result it is immutable and never re-fetched.
type Analysis struct {
	Safety         Safety   `json:"safety"`
	Category       string   `json:"category"`
	Summary        string   `json:"summary"`
	ProductName    string   `json:"product_name,omitempty"`
	ProductDetails string   `json:"product_details,omitempty"`
	Sources        []Source `json:"sources,omitempty"`
}

// DisplaySources returns at most MaxDisplaySources entries, in order.
func (a *Analysis) DisplaySources() []Source {
	if len(a.Sources) <= MaxDisplaySources {
		return a.Sources
	}
	return a.Sources[:MaxDisplaySources]
}

// Degraded builds the fallback payload used whenever the analyzer cannot
// produce a real judgment. It is always a valid Analysis, never an error.
func Degraded(category, summary string) *Analysis {
	return &Analysis{
		Safety:   SafetyUnknown,
		Category: category,
		Summary:  summary,
	}
}
