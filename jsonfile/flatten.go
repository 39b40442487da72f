package jsonfile

import (
	"fmt"
	"sort"
)

// Flatten walks a nested value depth-first in key order and returns the
// dot-notation paths and string values of all string leaves, index-paired.
//
// Non-string leaves (numbers, booleans, null) and arrays contribute nothing.
// The traversal uses an explicit work stack, so document depth is limited
// only by available memory, not by call-stack depth.
//
// Objects may be *Object (key order preserved from the source file) or
// map[string]any; the same input always produces the same output order.
func Flatten(root any) (keys []string, values []string) {
	type node struct {
		prefix string
		value  any
	}

	stack := []node{{prefix: "", value: root}}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := n.value.(type) {
		case string:
			keys = append(keys, n.prefix)
			values = append(values, v)

		case *Object:
			ks := v.Keys()
			// Push in reverse so children pop in key order.
			for i := len(ks) - 1; i >= 0; i-- {
				child, _ := v.Get(ks[i])
				stack = append(stack, node{
					prefix: JoinPath(n.prefix, EncodeSegment(ks[i])),
					value:  child,
				})
			}

		case map[string]any:
			ks := sortedKeys(v)
			for i := len(ks) - 1; i >= 0; i-- {
				stack = append(stack, node{
					prefix: JoinPath(n.prefix, EncodeSegment(ks[i])),
					value:  v[ks[i]],
				})
			}

		default:
			// Arrays, numbers, booleans, null: not translatable, skipped.
		}
	}

	return keys, values
}

// Rebuild is the inverse of Flatten: it reconstructs a nested object from
// index-paired paths and (translated) string values.
func Rebuild(keys, values []string) (*Object, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("rebuild: %d keys but %d values", len(keys), len(values))
	}

	root := NewObject()

	for i, key := range keys {
		segments := SplitPath(key)
		cur := root

		for _, seg := range segments[:len(segments)-1] {
			name := DecodeSegment(seg)
			next, ok := cur.Get(name)
			child, isObj := next.(*Object)
			if !ok || !isObj {
				child = NewObject()
				cur.Set(name, child)
			}
			cur = child
		}

		cur.Set(DecodeSegment(segments[len(segments)-1]), values[i])
	}

	return root, nil
}

func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
