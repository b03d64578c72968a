package mdb

import (
	"fmt"
	"strconv"
	"strings"
)

// EditorialObject is the shared view over the editorial aggregate types
// (master EOs, publication events, master EO resources).
type EditorialObject struct {
	Resource
}

// Collection returns the named embedded reference collection.
func (e EditorialObject) Collection(name string) RefCollection {
	return RefCollection{items: e.collection(name), owner: e.Resource, name: name}
}

// Contributors returns the embedded contributors.
func (e EditorialObject) Contributors() []Contributor {
	raw := e.collection("contributors")
	out := make([]Contributor, 0, len(raw))
	for _, r := range raw {
		out = append(out, Contributor{r})
	}
	return out
}

// References returns the embedded references of the given type.
func (e EditorialObject) References(refType string) []Reference {
	var out []Reference
	for _, r := range e.collection("references") {
		if r.Type() == refType {
			out = append(out, Reference{r})
		}
	}
	return out
}

// Reference returns the single reference of the given type. ok is false when
// none exists; holding more than one is an error.
func (e EditorialObject) Reference(refType string) (ref Reference, ok bool, err error) {
	found := e.References(refType)
	if len(found) == 0 {
		return Reference{}, false, nil
	}
	if len(found) > 1 {
		selfLink, _ := e.SelfLink()
		return Reference{}, false, &MultipleMatchesError{
			What: fmt.Sprintf("references of type %s in %s", refType, selfLink),
		}
	}
	return found[0], true, nil
}

// ReferenceValue returns the value of the single reference of the given
// type, or "" when absent.
func (e EditorialObject) ReferenceValue(refType string) (string, error) {
	ref, ok, err := e.Reference(refType)
	if err != nil || !ok {
		return "", err
	}
	return ref.Value(), nil
}

// Contributor is a view over one embedded contributor.
type Contributor struct {
	Resource
}

// Contact returns the contributor's contact reference.
func (c Contributor) Contact() Resource {
	contact, _ := c.reference("contact")
	return contact
}

// Role returns the contributor's role reference.
func (c Contributor) Role() Resource {
	role, _ := c.reference("role")
	return role
}

// CharacterName returns the portrayed character, if any.
func (c Contributor) CharacterName() string {
	return stringField(c.Resource, "characterName")
}

// Capacity returns the capacity the contributor acted in.
func (c Contributor) Capacity() string {
	return stringField(c.Resource, "capacity")
}

// Key returns the identity key used for duplicate detection.
func (c Contributor) Key() string {
	contact := c.Contact()
	role := c.Role()
	return fmt.Sprintf("CT=%s,T=%s,R=%s,C=%s,CAP=%s",
		stringField(contact, "title"),
		stringField(role, "title"),
		role.ResID(),
		contact.ResID(),
		c.Capacity())
}

// UniqueContributors removes by-key duplicates, keeping first occurrences in
// order.
func UniqueContributors(contributors []Contributor) []Contributor {
	seen := make(map[string]bool, len(contributors))
	var out []Contributor
	for _, c := range contributors {
		key := c.Key()
		if !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

// Reference is a view over one embedded external reference, e.g. a legacy
// system identifier.
type Reference struct {
	Resource
}

// Value returns the reference value.
func (r Reference) Value() string {
	return stringField(r.Resource, "reference")
}

// IntValue parses the reference value as an integer.
func (r Reference) IntValue() (int, error) {
	return strconv.Atoi(r.Value())
}

// MasterEO is the master editorial object aggregate.
type MasterEO struct {
	EditorialObject
}

// AsMasterEO wraps a fetched representation as a MasterEO view.
func AsMasterEO(r Resource) MasterEO {
	return MasterEO{EditorialObject{r}}
}

// MediaObjects returns the references to the master EO's media objects.
func (m MasterEO) MediaObjects() RefCollection {
	return m.Collection("mediaObjects")
}

// Publications returns the references to the master EO's publication events.
func (m MasterEO) Publications() RefCollection {
	return m.Collection("publications")
}

// Timelines returns the references to the master EO's timelines.
func (m MasterEO) Timelines() RefCollection {
	return m.Collection("timelines")
}

// VersionGroup returns the embedded version group reference.
func (m MasterEO) VersionGroup() (Resource, bool) {
	return m.reference("versionGroup")
}

// IsMetadataMEO reports whether this master EO carries the metadata of its
// version group.
func (m MasterEO) IsMetadataMEO() bool {
	v, _ := m.Resource["isMetadataMeo"].(bool)
	return v
}

// SubjectsWithTitle returns the subjects carrying the given title.
func (m MasterEO) SubjectsWithTitle(title string, caseSensitive bool) []Resource {
	var out []Resource
	for _, sub := range m.collection("subjects") {
		candidate := stringField(sub, "title")
		if candidate == title || (!caseSensitive && strings.EqualFold(candidate, title)) {
			out = append(out, sub)
		}
	}
	return out
}

// MasterEOResource is a standalone resource attached to a master EO.
type MasterEOResource struct {
	EditorialObject
}

// AsMasterEOResource wraps a fetched representation as a MasterEOResource
// view.
func AsMasterEOResource(r Resource) MasterEOResource {
	return MasterEOResource{EditorialObject{r}}
}

// VersionGroup groups the versions of an editorial work.
type VersionGroup struct {
	Resource
}

// AsVersionGroup wraps a fetched representation as a VersionGroup view.
func AsVersionGroup(r Resource) VersionGroup {
	return VersionGroup{r}
}

// MetadataMEO returns the reference to the master EO holding the group's
// metadata.
func (v VersionGroup) MetadataMEO() (Resource, bool) {
	return v.reference("metadataMeo")
}

// MediaObject is a piece of produced media belonging to a master EO.
type MediaObject struct {
	Resource
}

// AsMediaObject wraps a fetched representation as a MediaObject view.
func AsMediaObject(r Resource) MediaObject {
	return MediaObject{r}
}

// MediaResources returns the references to the media object's resources.
func (m MediaObject) MediaResources() RefCollection {
	return RefCollection{items: m.collection("resources"), owner: m.Resource, name: "resources"}
}

// PublishedVersions returns the references to publication media objects
// publishing this media object.
func (m MediaObject) PublishedVersions() RefCollection {
	return RefCollection{items: m.collection("publishedVersions"), owner: m.Resource, name: "publishedVersions"}
}

// MasterEORef returns the owning master EO reference.
func (m MediaObject) MasterEORef() (Resource, bool) {
	return m.reference("masterEO")
}

// MediaResource is a physical or digital carrier of a media object.
type MediaResource struct {
	Resource
}

// AsMediaResource wraps a fetched representation as a MediaResource view.
func AsMediaResource(r Resource) MediaResource {
	return MediaResource{r}
}

// Essences returns the references to the essences composed of this
// resource.
func (m MediaResource) Essences() RefCollection {
	return RefCollection{items: m.collection("essences"), owner: m.Resource, name: "essences"}
}

// MediaObjectRef returns the owning media object reference.
func (m MediaResource) MediaObjectRef() (Resource, bool) {
	return m.reference("mediaObject")
}

// MatchingLocators returns the locators with the given identifier and
// storage type.
func (m MediaResource) MatchingLocators(identifier, storageType string) []Resource {
	var out []Resource
	for _, locator := range m.collection("locators") {
		st, _ := locator.reference("storageType")
		if stringField(locator, "identifier") == identifier && st.ResID() == storageType {
			out = append(out, locator)
		}
	}
	return out
}

// Essence is a playable rendition composed from a media resource.
type Essence struct {
	Resource
}

// AsEssence wraps a fetched representation as an Essence view.
func AsEssence(r Resource) Essence {
	return Essence{r}
}

// ComposedOf returns the media resource this essence is cut from.
func (e Essence) ComposedOf() (Resource, bool) {
	return e.reference("composedOf")
}

// PlayoutOf returns the publication media object this essence plays out.
func (e Essence) PlayoutOf() (Resource, bool) {
	return e.reference("playoutOf")
}

// PublicationEvent is a publication of a master EO on some platform.
type PublicationEvent struct {
	EditorialObject
}

// AsPublicationEvent wraps a fetched representation as a PublicationEvent
// view.
func AsPublicationEvent(r Resource) PublicationEvent {
	return PublicationEvent{EditorialObject{r}}
}

// PMOs returns the references to the event's publication media objects.
func (p PublicationEvent) PMOs() RefCollection {
	return p.Collection("pmos")
}

// PublicationMediaObject is the published version of a media object within a
// publication event.
type PublicationMediaObject struct {
	Resource
}

// AsPublicationMediaObject wraps a fetched representation as a
// PublicationMediaObject view.
func AsPublicationMediaObject(r Resource) PublicationMediaObject {
	return PublicationMediaObject{r}
}

// Playouts returns the references to the essences playing out this
// publication media object.
func (p PublicationMediaObject) Playouts() RefCollection {
	return RefCollection{items: p.collection("playouts"), owner: p.Resource, name: "playouts"}
}

// PublishedVersionOf returns the media object this publishes.
func (p PublicationMediaObject) PublishedVersionOf() (Resource, bool) {
	return p.reference("publishedVersionOf")
}

// ParseTyped wraps a representation in the view matching its main type URI.
// Timeline representations of every timeline type map to Timeline.
// Representations without a type are returned unchanged.
func ParseTyped(r Resource) (any, error) {
	switch r.Type() {
	case "":
		return r, nil
	case TypeMasterEO:
		return AsMasterEO(r), nil
	case TypeMediaObject:
		return AsMediaObject(r), nil
	case TypePublicationMediaObject:
		return AsPublicationMediaObject(r), nil
	case TypeMediaResource:
		return AsMediaResource(r), nil
	case TypeEssence:
		return AsEssence(r), nil
	case TypePublicationEvent:
		return AsPublicationEvent(r), nil
	case TypeVersionGroup:
		return AsVersionGroup(r), nil
	case TypeMasterEOResource:
		return AsMasterEOResource(r), nil
	case TimelineTypeRights, TimelineTypeIndexPoints, TimelineTypeGenealogy,
		TimelineTypeGenealogyRights, TimelineTypeTechnical, TimelineTypeInternal:
		return AsTimeline(r), nil
	}
	return nil, fmt.Errorf("mdb: unknown resource type %q", r.Type())
}
