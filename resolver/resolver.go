// Package resolver expands role references into the individual recipients a
// notification should reach.
package resolver

// Recipient is an individually addressable delivery target.
type Recipient struct {
	ID   string
	Name string
	Bot  bool
}

// MembershipLookup returns the current members of a role, or nothing if the
// role cannot be resolved.
type MembershipLookup func(roleID string) []Recipient

// Resolve expands the given role IDs into a deduplicated list of human
// recipients. A member reachable through several roles appears once, in the
// order of their first appearance; automated accounts are excluded, and
// unresolvable roles contribute no recipients.
func Resolve(roleIDs []string, lookup MembershipLookup) []Recipient {
	var recipients []Recipient
	seen := make(map[string]bool)

	for _, roleID := range roleIDs {
		for _, member := range lookup(roleID) {
			if member.Bot || seen[member.ID] {
				continue
			}
			seen[member.ID] = true
			recipients = append(recipients, member)
		}
	}

	return recipients
}
