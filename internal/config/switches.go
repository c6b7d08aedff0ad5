package config

import "strings"

// normalizeSwitches lowercases, de-duplicates, and orders switches. Known kinds
// come first in canonical order; unknown entries follow in first-seen order so
// Validate can report them.
func normalizeSwitches(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var unknown []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		if !isKnownKind(v) {
			unknown = append(unknown, v)
		}
	}
	out := make([]string, 0, len(seen))
	for _, kind := range Kinds {
		if _, ok := seen[kind]; ok {
			out = append(out, kind)
		}
	}
	return append(out, unknown...)
}

func addSwitches(current []string, kinds ...string) []string {
	merged := make([]string, 0, len(current)+len(kinds))
	merged = append(merged, current...)
	merged = append(merged, kinds...)
	return normalizeSwitches(merged)
}

func removeSwitches(current []string, kinds ...string) []string {
	if len(kinds) == 0 {
		return normalizeSwitches(current)
	}
	drop := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		drop[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	kept := make([]string, 0, len(current))
	for _, v := range current {
		if _, ok := drop[strings.ToLower(strings.TrimSpace(v))]; ok {
			continue
		}
		kept = append(kept, v)
	}
	return normalizeSwitches(kept)
}

func isKnownKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
