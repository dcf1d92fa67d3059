package schema

import (
	"sort"
	"strings"
)

// ReplaceSuffix marks a key whose value replaces earlier values instead of
// being merged with them.
const ReplaceSuffix = "!"

// Merge combines fragments in order. Maps merge recursively, lists are
// appended and any other later value wins. A key ending in ReplaceSuffix
// discards what earlier fragments set for it; the suffix is stripped from
// the result.
func Merge(fragments ...any) any {
	var out any
	for i, frag := range fragments {
		if i == 0 {
			out = stripSuffixes(frag)
			continue
		}
		out = merge(out, frag)
	}
	return out
}

func merge(base, next any) any {
	switch n := next.(type) {
	case map[string]any:
		b, ok := base.(map[string]any)
		if !ok {
			return stripSuffixes(n)
		}
		out := make(map[string]any, len(b)+len(n))
		for k, v := range b {
			out[k] = v
		}
		for _, k := range replaceLast(n) {
			v := n[k]
			if strings.HasSuffix(k, ReplaceSuffix) {
				out[strings.TrimSuffix(k, ReplaceSuffix)] = stripSuffixes(v)
				continue
			}
			if existing, ok := out[k]; ok {
				out[k] = merge(existing, v)
			} else {
				out[k] = stripSuffixes(v)
			}
		}
		return out

	case []any:
		b, ok := base.([]any)
		if !ok {
			return stripSuffixes(n)
		}
		out := make([]any, 0, len(b)+len(n))
		out = append(out, b...)
		for _, v := range n {
			out = append(out, stripSuffixes(v))
		}
		return out
	}
	return next
}

func stripSuffixes(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for _, k := range replaceLast(tv) {
			out[strings.TrimSuffix(k, ReplaceSuffix)] = stripSuffixes(tv[k])
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = stripSuffixes(item)
		}
		return out
	}
	return v
}

// replaceLast returns the keys of m sorted, keys ending in ReplaceSuffix
// after the others, so that `foo!` wins over `foo` in the same map.
func replaceLast(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := strings.HasSuffix(keys[i], ReplaceSuffix), strings.HasSuffix(keys[j], ReplaceSuffix)
		if ri != rj {
			return rj
		}
		return keys[i] < keys[j]
	})
	return keys
}
