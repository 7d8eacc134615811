package scan

import "strings"

// symbologies that carry product numbers when no textual rule matches first
var productFormats = map[Format]bool{
	FormatEAN8:    true,
	FormatEAN13:   true,
	FormatUPCA:    true,
	FormatUPCE:    true,
	FormatCode39:  true,
	FormatCode128: true,
}

// Classify maps a decoded payload to its content type. Rules are ordered,
// first match wins. Pure, no side effects.
func Classify(data string, format Format) ContentType {
	switch {
	case strings.HasPrefix(data, "http://"), strings.HasPrefix(data, "https://"):
		return ContentURL
	case strings.HasPrefix(data, "WIFI:"):
		return ContentWifi
	case productFormats[format]:
		return ContentProduct
	default:
		return ContentText
	}
}
