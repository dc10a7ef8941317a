package render

import (
	"html"
	"math"
	"strconv"
)

// Byte units in ascending order; sizes beyond GB stay in GB.
var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

const unitBase = 1024

// FormatBytes renders n using base-1024 units with up to two decimals,
// e.g. 1536 -> "1.5 KB". Zero and negative sizes render as "0 Bytes".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 " + byteUnits[0]
	}

	// Integer search gives the exact floor(log1024(n)) without float drift.
	idx := 0
	scale := int64(1)
	for idx < len(byteUnits)-1 && n/scale >= unitBase {
		scale *= unitBase
		idx++
	}

	value := math.Round(float64(n)/float64(scale)*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[idx]
}

// EscapeHTML neutralizes markup-significant characters so s can be
// interpolated into HTML as text content or a quoted attribute value.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
