package resolver

import "testing"

func TestResolveDeduplicatesAcrossRoles(t *testing.T) {
	members := map[string][]Recipient{
		"100": {{ID: "user-1"}, {ID: "user-2"}},
		"200": {{ID: "user-2"}, {ID: "user-3"}},
	}
	lookup := func(roleID string) []Recipient { return members[roleID] }

	recipients := Resolve([]string{"100", "200"}, lookup)

	want := []string{"user-1", "user-2", "user-3"}
	if len(recipients) != len(want) {
		t.Fatalf("expected %v recipients, got %v", len(want), len(recipients))
	}
	for n, recipient := range recipients {
		if recipient.ID != want[n] {
			t.Fatalf("expected order %v, got %v at index %v", want, recipient.ID, n)
		}
	}
}

func TestResolveExcludesBots(t *testing.T) {
	lookup := func(roleID string) []Recipient {
		return []Recipient{
			{ID: "user-1"},
			{ID: "bot-1", Bot: true},
		}
	}

	recipients := Resolve([]string{"100"}, lookup)

	if len(recipients) != 1 || recipients[0].ID != "user-1" {
		t.Fatalf("expected only user-1, got %v", recipients)
	}
}

func TestResolveSkipsUnresolvableReferences(t *testing.T) {
	lookup := func(roleID string) []Recipient {
		if roleID == "200" {
			return []Recipient{{ID: "user-1"}}
		}
		return nil
	}

	recipients := Resolve([]string{"deleted-role", "200"}, lookup)

	if len(recipients) != 1 || recipients[0].ID != "user-1" {
		t.Fatalf("expected only user-1, got %v", recipients)
	}
}

func TestResolveEmptyReferences(t *testing.T) {
	lookup := func(roleID string) []Recipient {
		t.Fatal("lookup should not be called")
		return nil
	}

	if recipients := Resolve(nil, lookup); len(recipients) != 0 {
		t.Fatalf("expected no recipients, got %v", recipients)
	}
}
