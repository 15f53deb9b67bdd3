package project

import (
	"reflect"
	"sort"
	"strings"
)

// bfsMaxDepth bounds the fallback key search. Observed payloads nest config
// at most four levels deep; six leaves headroom without letting a
// pathological payload dominate a reconciliation pass.
const bfsMaxDepth = 6

// walkPath descends a dotted path through nested maps and returns the value
// at the end, if every segment resolves.
func walkPath(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// lookupPaths probes each path against each root in order and returns the
// first value that coerces to a non-empty string. Path order dominates root
// order: the most likely location is tried everywhere before the next one.
func lookupPaths(roots []map[string]any, paths []string) (string, bool) {
	for _, path := range paths {
		for _, root := range roots {
			if value, ok := walkPath(root, path); ok {
				if s, ok := scalarString(value); ok {
					return s, true
				}
			}
		}
	}
	return "", false
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "")
}

func keyMatches(key string, aliases []string) bool {
	normalized := normalizeKey(key)
	for _, alias := range aliases {
		a := normalizeKey(alias)
		if normalized == a || strings.HasPrefix(normalized, a) || strings.Contains(normalized, a) {
			return true
		}
	}
	return false
}

// searchKeys is the bounded breadth-first fallback: it visits all roots level
// by level looking for any key matching the alias set and returns the first
// value that coerces to a string. Visited maps are tracked by identity so
// cyclic payloads terminate.
func searchKeys(roots []map[string]any, aliases []string) (string, bool) {
	type frame struct {
		node  map[string]any
		depth int
	}
	visited := make(map[uintptr]struct{})
	queue := make([]frame, 0, len(roots))
	for _, root := range roots {
		queue = append(queue, frame{node: root})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		ptr := reflect.ValueOf(current.node).Pointer()
		if _, seen := visited[ptr]; seen {
			continue
		}
		visited[ptr] = struct{}{}

		for _, key := range sortedKeys(current.node) {
			value := current.node[key]
			if keyMatches(key, aliases) {
				if s, ok := scalarString(value); ok {
					return s, true
				}
			}
			if current.depth+1 >= bfsMaxDepth {
				continue
			}
			switch child := value.(type) {
			case map[string]any:
				queue = append(queue, frame{node: child, depth: current.depth + 1})
			case []any:
				for _, element := range child {
					if m, ok := asMap(element); ok {
						queue = append(queue, frame{node: m, depth: current.depth + 1})
					}
				}
			}
		}
	}
	return "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	// Deterministic visit order regardless of map iteration.
	sort.Strings(keys)
	return keys
}
