// Package resid provides typed mdb resource identifiers.
//
// An mdb resId is a URI built from a per-type base and an identifier tail,
// usually a GUID:
//
//	http://id.nrk.no/2016/mdb/masterEO/67f6b016-b631-4b3b-a95a-47c7e1b3e04f
//
// The package parses resIds into a Kind plus identifier, formats them back,
// and answers which kind a given resId string belongs to:
//
//	id, err := resid.Parse("http://id.nrk.no/2016/mdb/masterEO/67f6...")
//	if err != nil {
//	    return err
//	}
//	id.Kind() // resid.MasterEO
//	id.ID()   // "67f6..."
package resid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind names an mdb aggregate type that owns a resId namespace.
type Kind string

const (
	Bag                    Kind = "Bag"
	Serie                  Kind = "Serie"
	Season                 Kind = "Season"
	MasterEO               Kind = "MasterEO"
	MasterEOResource       Kind = "MasterEOResource"
	PublicationEvent       Kind = "PublicationEvent"
	PublicationMediaObject Kind = "PublicationMediaObject"
	MediaObject            Kind = "MediaObject"
	MediaResource          Kind = "MediaResource"
	Essence                Kind = "Essence"
	VersionGroup           Kind = "VersionGroup"
	Timeline               Kind = "Timeline"
)

var bases = map[Kind]string{
	Bag:                    "http://id.nrk.no/2016/mdb/bag",
	Serie:                  "http://id.nrk.no/2016/mdb/serie",
	Season:                 "http://id.nrk.no/2016/mdb/season",
	MasterEO:               "http://id.nrk.no/2016/mdb/masterEO",
	MasterEOResource:       "http://id.nrk.no/2016/mdb/masterEOResource",
	PublicationEvent:       "http://id.nrk.no/2016/mdb/publicationEvent",
	PublicationMediaObject: "http://id.nrk.no/2016/mdb/publicationMediaObject",
	MediaObject:            "http://id.nrk.no/2016/mdb/mediaObject",
	MediaResource:          "http://id.nrk.no/2016/mdb/mediaResource",
	Essence:                "http://id.nrk.no/2016/mdb/essence",
	VersionGroup:           "http://id.nrk.no/2016/mdb/versionGroup",
	Timeline:               "http://id.nrk.no/2017/mdb/timeline",
}

// kinds in dispatch order for Parse.
var kinds = []Kind{
	Bag, Serie, Season, MasterEOResource, MasterEO, PublicationEvent,
	PublicationMediaObject, MediaObject, MediaResource, Essence,
	VersionGroup, Timeline,
}

// Base returns the resId base URI of the kind, or "" for an unknown kind.
func (k Kind) Base() string {
	return bases[k]
}

// Valid reports whether the kind is one of the known aggregate kinds.
func (k Kind) Valid() bool {
	_, ok := bases[k]
	return ok
}

// ResID is a parsed mdb resource identifier: a kind plus the identifier
// tail. The tail is normalized to canonical UUID form when it parses as
// one; legacy identifiers are kept verbatim.
type ResID struct {
	kind Kind
	id   string
}

// New builds a ResID from a kind and a bare identifier.
func New(kind Kind, id string) (ResID, error) {
	if !kind.Valid() {
		return ResID{}, fmt.Errorf("unknown resId kind %q", kind)
	}
	if id == "" {
		return ResID{}, fmt.Errorf("resId identifier cannot be empty")
	}
	return ResID{kind: kind, id: normalizeID(id)}, nil
}

func normalizeID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

// Kind returns the aggregate kind.
func (r ResID) Kind() Kind {
	return r.kind
}

// ID returns the bare identifier tail.
func (r ResID) ID() string {
	return r.id
}

// UUID returns the identifier as a UUID when it is one.
func (r ResID) UUID() (uuid.UUID, bool) {
	parsed, err := uuid.Parse(r.id)
	if err != nil {
		return uuid.UUID{}, false
	}
	return parsed, true
}

// IsZero reports whether this is the zero ResID.
func (r ResID) IsZero() bool {
	return r.kind == "" && r.id == ""
}

// Equal reports whether two ResIDs name the same aggregate.
func (r ResID) Equal(other ResID) bool {
	return r.kind == other.kind && r.id == other.id
}

// String returns the full resId URI.
func (r ResID) String() string {
	if r.IsZero() {
		return ""
	}
	return r.kind.Base() + "/" + r.id
}

// MarshalText implements encoding.TextMarshaler, so ResIDs serialize as
// their URI form in JSON.
func (r ResID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ResID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Matches reports whether the resId string belongs to the kind's namespace.
func Matches(kind Kind, resID string) bool {
	base := kind.Base()
	return base != "" && strings.HasPrefix(resID, base+"/")
}

// ParseKind parses a resId string known to belong to the given kind.
func ParseKind(kind Kind, resID string) (ResID, error) {
	if !kind.Valid() {
		return ResID{}, fmt.Errorf("unknown resId kind %q", kind)
	}
	if !Matches(kind, resID) {
		return ResID{}, fmt.Errorf("%q is not a %s resId", resID, kind)
	}
	tail := strings.TrimPrefix(resID, kind.Base()+"/")
	if tail == "" || strings.Contains(tail, "/") {
		return ResID{}, fmt.Errorf("%q is not a %s resId", resID, kind)
	}
	return ResID{kind: kind, id: normalizeID(tail)}, nil
}

// ParseOrNew parses a full resId string of the given kind, or treats the
// input as a bare identifier when it is not URI-shaped.
func ParseOrNew(kind Kind, residOrID string) (ResID, error) {
	if Matches(kind, residOrID) {
		return ParseKind(kind, residOrID)
	}
	return New(kind, residOrID)
}

// Parse parses a resId string of any known kind.
func Parse(resID string) (ResID, error) {
	for _, kind := range kinds {
		if Matches(kind, resID) {
			return ParseKind(kind, resID)
		}
	}
	return ResID{}, fmt.Errorf("unknown resId namespace: %q", resID)
}
