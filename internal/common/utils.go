package common

import "strings"

// ContainsAnyFold reports whether s contains any of subs, ignoring case.
func ContainsAnyFold(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
