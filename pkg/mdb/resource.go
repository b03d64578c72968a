package mdb

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Resource is a JSON representation returned by the mdb service. It carries
// domain fields plus a "links" section mapping relation names to target
// URIs. Identity is the self link; the client never mutates a Resource
// after it has been fetched.
type Resource map[string]any

// Link is one entry of a resource's links section.
type Link struct {
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
	Href string `json:"href"`
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// ResID returns the resource's resId field, or "" when absent.
func (r Resource) ResID() string {
	return stringField(r, "resId")
}

// Type returns the main type URI of the resource.
func (r Resource) Type() string {
	return stringField(r, "type")
}

// SubType returns the subType URI of the resource.
func (r Resource) SubType() string {
	return stringField(r, "subType")
}

// Links returns the parsed links section. Entries without an href are
// skipped.
func (r Resource) Links() []Link {
	raw, _ := r["links"].([]any)
	links := make([]Link, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		href := stringField(m, "href")
		if href == "" {
			continue
		}
		links = append(links, Link{
			Rel:  stringField(m, "rel"),
			Type: stringField(m, "type"),
			Href: href,
		})
	}
	return links
}

// Link resolves a relation name to a target URI. The links section is
// consulted first; an embedded reference field of the same name carrying an
// href (e.g. {"versionGroup": {"href": ...}}) is accepted as a fallback.
func (r Resource) Link(rel string) (string, error) {
	for _, l := range r.Links() {
		if l.Rel == rel {
			return l.Href, nil
		}
	}
	if embedded, ok := r[rel].(map[string]any); ok {
		if href := stringField(embedded, "href"); href != "" {
			return href, nil
		}
		if href, err := Resource(embedded).SelfLink(); err == nil {
			return href, nil
		}
	}
	return "", &RelationNotFoundError{Rel: rel, ResID: r.ResID()}
}

// SelfLink returns the URI identifying this resource.
func (r Resource) SelfLink() (string, error) {
	return r.Link(RelSelf)
}

// Decode unpacks the resource's domain fields into out, which must be a
// pointer to a struct. Field names are matched against json tags, so the
// same struct can serve for both wire decoding and Resource views.
func (r Resource) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("decoding resource %s: %w", r.ResID(), err)
	}
	return nil
}

// CloneForCreate returns a shallow copy with the server-owned fields (resId
// and links) removed, suitable as payload for creating a sibling resource.
func (r Resource) CloneForCreate() Resource {
	clone := make(Resource, len(r))
	for k, v := range r {
		if k == "resId" || k == "links" {
			continue
		}
		clone[k] = v
	}
	return clone
}

// collection returns the named embedded collection as resources. Non-object
// members are skipped.
func (r Resource) collection(name string) []Resource {
	raw, _ := r[name].([]any)
	out := make([]Resource, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Resource(m))
		}
	}
	return out
}

// reference returns the named embedded single-valued reference.
func (r Resource) reference(name string) (Resource, bool) {
	m, ok := r[name].(map[string]any)
	if !ok {
		return nil, false
	}
	return Resource(m), true
}

// ownerRef builds the {"resId": ...} reference the create methods attach to
// their payloads.
func ownerRef(r Resource) Resource {
	return Resource{"resId": r.ResID()}
}

// withOwner returns a shallow copy of payload with an owner reference set
// under key. The caller's map is left untouched.
func withOwner(payload Resource, key string, owner Resource) Resource {
	out := make(Resource, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out[key] = ownerRef(owner)
	return out
}

// RefCollection is a filterable view over an embedded collection of
// resource references, such as a master EO's mediaObjects.
type RefCollection struct {
	items []Resource
	owner Resource
	name  string
}

// OfType narrows the collection to members with the given main type.
func (c RefCollection) OfType(mainType string) RefCollection {
	var filtered []Resource
	for _, item := range c.items {
		if item.Type() == mainType {
			filtered = append(filtered, item)
		}
	}
	return RefCollection{items: filtered, owner: c.owner, name: c.name}
}

// OfSubType narrows the collection to members with the given subType.
func (c RefCollection) OfSubType(subType string) RefCollection {
	var filtered []Resource
	for _, item := range c.items {
		if item.SubType() == subType {
			filtered = append(filtered, item)
		}
	}
	return RefCollection{items: filtered, owner: c.owner, name: c.name}
}

// First returns the first member, or false when the collection is empty.
func (c RefCollection) First() (Resource, bool) {
	if len(c.items) == 0 {
		return nil, false
	}
	return c.items[0], true
}

// Single returns the only member. It fails when the collection holds more
// than one element and returns (nil, nil) when it is empty.
func (c RefCollection) Single() (Resource, error) {
	if len(c.items) > 1 {
		return nil, &MultipleMatchesError{
			What: fmt.Sprintf("single element of %s in %s", c.name, c.owner.ResID()),
		}
	}
	if len(c.items) == 0 {
		return nil, nil
	}
	return c.items[0], nil
}

// Len returns the number of members.
func (c RefCollection) Len() int {
	return len(c.items)
}

// At returns the i-th member.
func (c RefCollection) At(i int) Resource {
	return c.items[i]
}

// All returns the members as a slice.
func (c RefCollection) All() []Resource {
	return c.items
}
