package bbcode

import (
	"math"
	"strconv"
	"strings"
)

// Serialize renders doc as canonical markup. Markers are written before
// paths, each group keeping its relative order. Objects without coordinates
// cannot be represented and are dropped, as are coordinates that do not
// round to finite numbers. A document with no viewport and no drawable
// objects yields "".
func (c *Codec) Serialize(doc Document) string {
	var mapData string
	if doc.HasViewport() {
		zoom := strconv.Itoa(doc.Zoom)
		if c.cfg.TagParams {
			mapData = ` z="` + zoom + `"`
		} else {
			mapData = "=" + zoom
		}
		if doc.Center != nil && c.finite(*doc.Center) {
			ll := FormatLatLng(*doc.Center, c.cfg.DecimalDigits)
			if c.cfg.TagParams {
				mapData += ` ll="` + ll + `"`
			} else {
				mapData += "," + ll
			}
		}
	}

	var elements []string
	for _, group := range [][]Object{doc.Markers(), doc.Paths()} {
		for _, obj := range group {
			if str, ok := c.formatElement(obj); ok {
				elements = append(elements, str)
			}
		}
	}
	for _, obj := range doc.Objects {
		if len(obj.Coords) == 0 && obj.Text != "" {
			c.log().Debug().Str("text", obj.Text).Msg("Dropping object without coordinates")
		}
	}

	if len(elements) == 0 && mapData == "" {
		return ""
	}

	openBr, closBr := c.cfg.openBracket(), c.cfg.closeBracket()

	var sb strings.Builder
	sb.WriteString(openBr + "map" + mapData + closBr)
	sb.WriteString(strings.Join(elements, "; "))
	sb.WriteString(openBr + "/map" + closBr)

	return sb.String()
}

// formatElement renders one object. It reports false when no coordinate
// of the object survives rounding.
func (c *Codec) formatElement(obj Object) (string, bool) {
	var sb strings.Builder
	n := 0
	for _, ll := range obj.Coords {
		if !c.finite(ll) {
			c.log().Debug().Float64("lat", ll.Lat).Float64("lng", ll.Lng).Msg("Dropping non-finite coordinate")
			continue
		}
		if n > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(FormatLatLng(ll, c.cfg.DecimalDigits))
		n++
	}
	if n == 0 {
		return "", false
	}

	params := make([]string, 0, len(obj.Params))
	for _, p := range obj.Params {
		if !validParam(p) {
			c.log().Debug().Str("param", p).Msg("Dropping invalid parameter")
			continue
		}
		params = append(params, p)
	}

	text := obj.Text
	// A bare label with "|" would be read back as a parameter list.
	if strings.Contains(text, "|") && len(params) == 0 {
		text = "|" + text
	}
	if text == "" && len(params) == 0 {
		return sb.String(), true
	}

	sb.WriteByte('(')
	if len(params) > 0 {
		sb.WriteString(strings.Join(params, ","))
		sb.WriteByte('|')
	}
	sb.WriteString(escapeText(text))
	sb.WriteByte(')')

	return sb.String(), true
}

func (c *Codec) finite(ll LatLng) bool {
	lat, lng := Round(ll.Lat, c.cfg.DecimalDigits), Round(ll.Lng, c.cfg.DecimalDigits)
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && !math.IsNaN(lng) && !math.IsInf(lng, 0)
}

// validParam reports whether p is a non-empty run of ASCII letters and digits.
func validParam(p string) bool {
	if p == "" {
		return false
	}
	for i := 0; i < len(p); i++ {
		b := p[i]
		if !('a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9') {
			return false
		}
	}
	return true
}

// escapeText escapes every ")" so the label cannot close its group early.
// A trailing backslash would escape the closing parenthesis; the added space
// is trimmed again by the parser.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, ")", `\)`)
	if strings.HasSuffix(text, `\`) {
		text += " "
	}
	return text
}

// FormatLatLng renders ll as "LAT,LNG" rounded to digits decimal places.
func FormatLatLng(ll LatLng, digits int) string {
	return formatDegrees(ll.Lat, digits) + "," + formatDegrees(ll.Lng, digits)
}

// Round rounds v to digits decimal places. Halves round up, toward
// positive infinity, so -1.5 becomes -1.
func Round(v float64, digits int) float64 {
	mult := math.Pow(10, float64(digits))
	x := v * mult
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r / mult
}

func formatDegrees(v float64, digits int) string {
	v = Round(v, digits)
	if v == 0 {
		// drop negative zero
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
