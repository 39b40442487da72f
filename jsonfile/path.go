package jsonfile

import "strings"

// Dot-notation paths address string leaves in a nested JSON object.
// A literal "." inside an object key is escaped as "\." so that
// {"user.name": "x"} and {"user": {"name": "x"}} flatten to distinct paths.
//
// A key that itself contains a backslash directly before a dot is not
// disambiguated by this scheme; such keys are unsupported.

// EncodeSegment escapes every literal dot in an object key.
func EncodeSegment(key string) string {
	return strings.ReplaceAll(key, ".", `\.`)
}

// DecodeSegment reverses EncodeSegment.
func DecodeSegment(segment string) string {
	return strings.ReplaceAll(segment, `\.`, ".")
}

// JoinPath appends an encoded segment to a path prefix.
func JoinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

// SplitPath splits a path on every dot not preceded by a backslash.
// The returned segments are still encoded; apply DecodeSegment to
// recover the original keys.
func SplitPath(path string) []string {
	var segments []string
	var cur strings.Builder

	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '\\' && i+1 < len(path) && path[i+1] == '.' {
			cur.WriteString(`\.`)
			i++
			continue
		}
		if c == '.' {
			segments = append(segments, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	segments = append(segments, cur.String())

	return segments
}
