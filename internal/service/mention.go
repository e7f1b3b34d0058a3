// Package service contains business logic coordinating repositories,
// notifications and validation.
package service

import "regexp"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// ParseMentions extracts the unique user names referenced as @name tokens in
// text, in order of first appearance. Whether a name resolves to a real user
// is decided later; unknown names are simply dropped there.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
