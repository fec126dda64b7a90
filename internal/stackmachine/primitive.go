package stackmachine

import (
	"strconv"
	"strings"

	"github.com/kallsyms/gasp/descriptor"
	gerrors "github.com/kallsyms/gasp/errors"
	"github.com/kallsyms/gasp/internal/scanner"
)

// parsePrimitive finalizes a primitive Field frame's text accumulator
// per spec §4.3's Close semantics: Int parses base-10 then falls back to
// base-0 (sign-aware, so "0x1A" or "-7" both work); Float uses standard
// decimal parsing; Bool accepts true/false/1/0/yes/no case-insensitively;
// String is entity-decoded and, at object scope only, whitespace-trimmed.
// On failure the value is the kind's zero value and a recorded error is
// returned alongside it (parsing continues; this is never fatal).
func parsePrimitive(d *descriptor.Descriptor, raw []byte, atObjectScope bool) (any, error) {
	text := scanner.UnescapeText(raw)
	switch d.Kind {
	case descriptor.KindString:
		if atObjectScope {
			text = strings.TrimSpace(text)
		}
		return text, nil
	case descriptor.KindInt:
		trimmed := strings.TrimSpace(text)
		if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return v, nil
		}
		if v, err := strconv.ParseInt(trimmed, 0, 64); err == nil {
			return v, nil
		}
		return int64(0), gerrors.NewCodef(gerrors.PrimitiveParseFailure, "invalid int %q", text)
	case descriptor.KindFloat:
		trimmed := strings.TrimSpace(text)
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v, nil
		}
		return float64(0), gerrors.NewCodef(gerrors.PrimitiveParseFailure, "invalid float %q", text)
	case descriptor.KindBool:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, gerrors.NewCodef(gerrors.PrimitiveParseFailure, "invalid bool %q", text)
	case descriptor.KindAny:
		return text, nil
	default:
		return text, nil
	}
}

// currentPrimitiveValue exposes a Field frame's accumulator as a
// best-effort snapshot before its Close arrives (spec §4.3: "primitive
// accumulator is exposed as the current parsed string/number even before
// close"). It never records errors and never mutates the frame.
func currentPrimitiveValue(f *frame) any {
	text := scanner.UnescapeText(f.text)
	switch f.desc.Kind {
	case descriptor.KindInt:
		trimmed := strings.TrimSpace(text)
		if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return v
		}
		if v, err := strconv.ParseInt(trimmed, 0, 64); err == nil {
			return v
		}
		return text
	case descriptor.KindFloat:
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return v
		}
		return text
	case descriptor.KindBool:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		return text
	default:
		if f.atObjectScope {
			return strings.TrimSpace(text)
		}
		return text
	}
}
