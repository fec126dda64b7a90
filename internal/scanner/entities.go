package scanner

import "bytes"

// standardEntities are the five XML predefined entities GASP decodes
// inside attribute values (spec §4.2). Character text content is left
// verbatim for the consumer to decode (see event.go).
var standardEntities = map[string]byte{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// unescapeAttr decodes the five standard entities inside an attribute
// value. Unknown or malformed entity references are left verbatim rather
// than aborting the attribute — GASP only requires the well-known five
// (spec §4.2 names exactly &lt; &gt; &amp; &quot; &apos;).
func unescapeAttr(raw []byte) string {
	return unescapeEntities(raw)
}

// UnescapeText decodes the same five standard entities inside character
// text content. The scanner itself never decodes Text event bytes (event.go
// documents this as deferred to the consumer); the stack machine calls this
// at Close time when finalizing a primitive's accumulator.
func UnescapeText(raw []byte) string {
	return unescapeEntities(raw)
}

func unescapeEntities(raw []byte) string {
	if !bytes.ContainsRune(raw, '&') {
		return string(raw)
	}
	var out []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] != '&' {
			out = append(out, raw[i])
			continue
		}
		semi := bytes.IndexByte(raw[i:], ';')
		if semi < 0 || semi > 8 {
			out = append(out, raw[i])
			continue
		}
		name := string(raw[i+1 : i+semi])
		if ch, ok := standardEntities[name]; ok {
			out = append(out, ch)
			i += semi
			continue
		}
		out = append(out, raw[i])
	}
	return string(out)
}
