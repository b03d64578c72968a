package eodiff

import (
	"fmt"
	"strings"

	"github.com/nrkno/mdbclient-go/pkg/mdb"
)

// contributorKey builds the by-value identity of a contributor: contact
// title, role title, character name, comment and capacity. Role resIds
// minted client-side are rejected; they would make equal contributors
// look distinct.
func contributorKey(item mdb.Resource) (string, error) {
	contact, _ := item["contact"].(map[string]any)
	role, _ := item["role"].(map[string]any)
	roleResID, _ := role["resId"].(string)
	if strings.Contains(roleResID, "rest_client") {
		return "", fmt.Errorf("client generated role resId %q", roleResID)
	}
	fields := []string{
		stringOf(contact, "title"),
		stringOf(role, "title"),
		stringOf(item, "characterName"),
		stringOf(item, "comment"),
		stringOf(item, "capacity"),
	}
	return strings.Join(fields, ":"), nil
}

func stringOf(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// SquashContributors collapses by-value equal members of the contributors
// collection, keeping first occurrences in order. Representations without
// contributors are left untouched.
func SquashContributors(eo mdb.Resource) error {
	raw, ok := eo["contributors"].([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	revised := make([]any, 0, len(raw))
	for _, v := range raw {
		item, _ := v.(map[string]any)
		key, err := contributorKey(item)
		if err != nil {
			return err
		}
		if !seen[key] {
			seen[key] = true
			revised = append(revised, v)
		}
	}
	eo["contributors"] = revised
	return nil
}
