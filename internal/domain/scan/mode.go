package scan

import "fmt"

// Mode enum, selects which symbology set the decode run recognizes
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeArea Mode = "area"
	ModeLine Mode = "line"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeArea, ModeLine:
		return true
	}
	return false
}

// Per-mode recognition tables. Membership is a contract with the decode
// engine; auto is a curated subset of the union, tuned for decode latency.
var (
	areaModeFormats = []Format{
		FormatQRCode, FormatAztec, FormatDataMatrix, FormatPDF417,
	}
	lineModeFormats = []Format{
		FormatCode128, FormatCode39, FormatCode93, FormatEAN13, FormatEAN8,
		FormatUPCA, FormatUPCE, FormatITF, FormatCodabar, FormatRSS14,
	}
	autoModeFormats = []Format{
		FormatQRCode, FormatAztec, FormatDataMatrix, FormatCode128, FormatCode39,
		FormatEAN13, FormatEAN8, FormatUPCA, FormatUPCE, FormatPDF417,
	}
)

// FormatsFor returns a copy of the recognition set for a mode.
func FormatsFor(m Mode) ([]Format, error) {
	var src []Format
	switch m {
	case ModeAuto:
		src = autoModeFormats
	case ModeArea:
		src = areaModeFormats
	case ModeLine:
		src = lineModeFormats
	default:
		return nil, fmt.Errorf("unknown mode: %s", m)
	}
	out := make([]Format, len(src))
	copy(out, src)
	return out, nil
}
