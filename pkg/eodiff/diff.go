// Package eodiff computes field-level differences between two
// representations of the same editorial object, typically the stored
// version and a proposed update. It answers what an update would change
// without talking to the service.
package eodiff

import (
	"fmt"
	"strings"

	"github.com/nrkno/mdbclient-go/pkg/mdb"
)

// FieldDiff describes the change to one field. For collection fields the
// Modified slice is parallel to the existing collection: unchanged elements
// are nil, changed elements carry the full modified payload.
type FieldDiff struct {
	Field    string
	Added    []mdb.Resource
	Modified []mdb.Resource
	Removed  []mdb.Resource
}

// Unchanged returns the empty diff.
func Unchanged() FieldDiff {
	return FieldDiff{}
}

// WithAdded returns a diff recording additions to a field.
func WithAdded(field string, added ...mdb.Resource) FieldDiff {
	return FieldDiff{Field: field, Added: added}
}

// WithModified returns a diff recording modifications to a field.
func WithModified(field string, modified ...mdb.Resource) FieldDiff {
	return FieldDiff{Field: field, Modified: modified}
}

// WithRemoved returns a diff recording removals from a field.
func WithRemoved(field string, removed ...mdb.Resource) FieldDiff {
	return FieldDiff{Field: field, Removed: removed}
}

func hasValued(items []mdb.Resource) bool {
	for _, item := range items {
		if item != nil {
			return true
		}
	}
	return false
}

// HasDiff reports whether anything changed.
func (d FieldDiff) HasDiff() bool {
	return hasValued(d.Added) || hasValued(d.Modified) || hasValued(d.Removed)
}

// HasAddModifyDiff reports whether anything was added or modified; removals
// alone do not count.
func (d FieldDiff) HasAddModifyDiff() bool {
	return hasValued(d.Added) || hasValued(d.Modified)
}

// describe renders a collection member for change logs, preferring its
// name, then title, then contributor contact/role.
func describe(item mdb.Resource) string {
	if name, ok := item["name"].(string); ok && name != "" {
		return name
	}
	if title, ok := item["title"].(string); ok && title != "" {
		return title
	}
	contributor := mdb.Contributor{Resource: item}
	if contact := contributor.Contact(); contact != nil {
		text, _ := contact["title"].(string)
		if text != "" {
			role := contributor.Role()
			if roleText, _ := role["title"].(string); roleText != "" {
				return text + " as " + roleText
			}
			if role.ResID() != "" {
				return text + " as " + role.ResID()
			}
			return text
		}
	}
	return fmt.Sprintf("%v", map[string]any(item))
}

// Explain renders the diff as a human readable change log, one line per
// changed element.
func (d FieldDiff) Explain() string {
	var b strings.Builder
	writeAll := func(verb string, items []mdb.Resource) {
		for _, item := range items {
			if item == nil {
				continue
			}
			fmt.Fprintf(&b, "%s %s: %s\n", d.Field, verb, describe(item))
		}
	}
	writeAll("added", d.Added)
	writeAll("modified", d.Modified)
	writeAll("removed", d.Removed)
	return b.String()
}

// EqualFunc compares two collection members.
type EqualFunc func(a, b mdb.Resource) bool

// ResIDEqual compares members by their resId.
func ResIDEqual(a, b mdb.Resource) bool {
	return a.ResID() == b.ResID()
}

// TitleEqual compares members by their title.
func TitleEqual(a, b mdb.Resource) bool {
	titleA, _ := a["title"].(string)
	titleB, _ := b["title"].(string)
	return titleA == titleB
}

func find(collection []mdb.Resource, equal EqualFunc, target mdb.Resource) (mdb.Resource, bool) {
	for _, candidate := range collection {
		if equal(candidate, target) {
			return candidate, true
		}
	}
	return nil, false
}

func collectionOf(owner mdb.Resource, field string) []mdb.Resource {
	raw, _ := owner[field].([]any)
	out := make([]mdb.Resource, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, mdb.Resource(m))
		}
	}
	return out
}

// CollectionChanges diffs the named collection field of two
// representations. refEqual decides whether two members denote the same
// element, valEqual whether a member's value changed.
func CollectionChanges(existing, modified mdb.Resource, field string, refEqual, valEqual EqualFunc) FieldDiff {
	existingColl := collectionOf(existing, field)
	modifiedColl := collectionOf(modified, field)

	var added []mdb.Resource
	for _, member := range modifiedColl {
		if _, ok := find(existingColl, refEqual, member); !ok {
			added = append(added, member)
		}
	}

	changed := make([]mdb.Resource, len(existingColl))
	removed := make([]mdb.Resource, len(existingColl))
	for i, member := range existingColl {
		match, ok := find(modifiedColl, refEqual, member)
		if !ok {
			removed[i] = member
			continue
		}
		if !valEqual(member, match) {
			changed[i] = match
		}
	}

	diff := FieldDiff{Field: field}
	if hasValued(added) {
		diff.Added = added
	}
	if hasValued(changed) {
		diff.Modified = changed
	}
	if hasValued(removed) {
		diff.Removed = removed
	}
	return diff
}

// CategoriesChanges diffs the categories collection, matching members by
// resId and comparing their titles.
func CategoriesChanges(existing, modified mdb.Resource) FieldDiff {
	return CollectionChanges(existing, modified, "categories", ResIDEqual, TitleEqual)
}

// AttributeChange diffs a scalar attribute of two representations.
func AttributeChange(existing, modified mdb.Resource, key string) FieldDiff {
	existingVal, inExisting := existing[key]
	modifiedVal, inModified := modified[key]
	switch {
	case inExisting && !inModified:
		return WithRemoved(key, mdb.Resource{key: existingVal})
	case !inExisting && inModified:
		return WithAdded(key, mdb.Resource{key: modifiedVal})
	case inExisting && inModified && existingVal != modifiedVal:
		return WithModified(key, mdb.Resource{key: modifiedVal})
	}
	return Unchanged()
}

func attributesEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// IllustrationChanges diffs the illustration field. The illustration counts
// as modified when its identifier or any of its attributes changed.
func IllustrationChanges(existing, modified mdb.Resource) FieldDiff {
	const field = "illustration"
	existingImage, _ := existing[field].(map[string]any)
	modifiedImage, _ := modified[field].(map[string]any)

	switch {
	case existingImage == nil && modifiedImage == nil:
		return Unchanged()
	case existingImage == nil:
		return WithAdded(field, mdb.Resource(modifiedImage))
	case modifiedImage == nil:
		return WithRemoved(field, mdb.Resource(existingImage))
	case existingImage["identifier"] != modifiedImage["identifier"]:
		return WithModified(field, mdb.Resource(modifiedImage))
	}

	existingAttrs, _ := existingImage["illustrationAttributes"].(map[string]any)
	modifiedAttrs, _ := modifiedImage["illustrationAttributes"].(map[string]any)
	if !attributesEqual(existingAttrs, modifiedAttrs) {
		return WithModified(field, mdb.Resource(modifiedImage))
	}
	return Unchanged()
}
