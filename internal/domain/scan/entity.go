package scan

import (
	"time"

	"github.com/bryanwahyu/lenscan/internal/domain/analysis"
)

// Format enum, symbology identifiers as reported by the decode engine
type Format string

const (
	FormatQRCode     Format = "QR_CODE"
	FormatAztec      Format = "AZTEC"
	FormatDataMatrix Format = "DATA_MATRIX"
	FormatMaxiCode   Format = "MAXICODE"
	FormatPDF417     Format = "PDF_417"
	FormatCode128    Format = "CODE_128"
	FormatCode39     Format = "CODE_39"
	FormatCode93     Format = "CODE_93"
	FormatEAN13      Format = "EAN_13"
	FormatEAN8       Format = "EAN_8"
	FormatUPCA       Format = "UPC_A"
	FormatUPCE       Format = "UPC_E"
	FormatITF        Format = "ITF"
	FormatCodabar    Format = "CODABAR"
	FormatRSS14      Format = "RSS_14"
)

// area-class symbologies render as a filled polygon; everything else is a line code
var areaFormats = map[Format]bool{
	FormatQRCode:     true,
	FormatAztec:      true,
	FormatDataMatrix: true,
	FormatMaxiCode:   true,
	FormatPDF417:     true,
}

// IsArea reports whether the symbology is a 2D matrix code.
func (f Format) IsArea() bool { return areaFormats[f] }

// ContentType enum
type ContentType string

const (
	ContentURL     ContentType = "url"
	ContentWifi    ContentType = "wifi"
	ContentProduct ContentType = "product"
	ContentText    ContentType = "text"
)

// Aggregate root: Result, one decoded observation.
// Timestamp is the identity key used to merge a completed analysis back into
// history; Data and Type never change after creation.
type Result struct {
	Data      string             `json:"data"`
	Format    Format             `json:"format"`
	Timestamp time.Time          `json:"timestamp"`
	Type      ContentType        `json:"type"`
	Analysis  *analysis.Analysis `json:"analysis,omitempty"`
}

// NewResult builds a Result and classifies it once.
func NewResult(data string, format Format, ts time.Time) *Result {
	return &Result{
		Data:      data,
		Format:    format,
		Timestamp: ts,
		Type:      Classify(data, format),
	}
}
