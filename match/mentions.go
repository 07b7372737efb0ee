package match

import "regexp"

var roleMentionPattern = regexp.MustCompile(`<@&(\d+)>`)

// ExtractRoleMentions returns the role IDs mentioned across the given texts,
// deduplicated, in first-appearance order.
func ExtractRoleMentions(texts ...string) []string {
	var ids []string
	seen := make(map[string]bool)

	for _, text := range texts {
		for _, mention := range roleMentionPattern.FindAllStringSubmatch(text, -1) {
			id := mention[1]
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids
}

// ReplaceRoleMentions substitutes role mention tokens in the given text with
// their human-readable names. Tokens without a known name keep the raw
// mention.
func ReplaceRoleMentions(text string, names map[string]string) string {
	return roleMentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := roleMentionPattern.FindStringSubmatch(token)[1]
		if name, ok := names[id]; ok {
			return name
		}
		return token
	})
}
