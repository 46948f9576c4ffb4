package utils

import (
	"strings"
)

// SplitList splits a comma separated list, trimming items and dropping empty ones.
// It always returns a non-nil slice.
func SplitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
