package mdb

import (
	"fmt"
	"sort"
)

// Timeline is a typed sequence of items attached to a master EO: rights
// periods, index points, technical events and so on. The timeline type URI
// decides which item shapes the server accepts.
type Timeline struct {
	Resource
}

// AsTimeline wraps a fetched representation as a Timeline view.
func AsTimeline(r Resource) Timeline {
	return Timeline{r}
}

// NewTimeline builds a payload for creating a timeline of the given type.
func NewTimeline(timelineType string, items []Resource) Timeline {
	converted := make([]any, 0, len(items))
	for _, item := range items {
		converted = append(converted, map[string]any(item))
	}
	return Timeline{Resource{"type": timelineType, "items": converted}}
}

// NewRightsTimeline builds a payload for creating a rights timeline.
func NewRightsTimeline(items []Resource) Timeline {
	return NewTimeline(TimelineTypeRights, items)
}

// Items returns the timeline's items.
func (t Timeline) Items() []Resource {
	return t.collection("items")
}

// MasterEORef returns the owning master EO reference.
func (t Timeline) MasterEORef() (Resource, bool) {
	return t.reference("masterEO")
}

// FilterItems returns the items matching the predicate.
func (t Timeline) FilterItems(pred func(Resource) bool) []Resource {
	var out []Resource
	for _, item := range t.Items() {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// fieldValueEqual compares a match value against an item value. JSON numbers
// decode as float64, so numeric values compare across integer kinds.
func fieldValueEqual(want, got any) bool {
	if want == got {
		return true
	}
	wantNum, wantOk := asFloat(want)
	gotNum, gotOk := asFloat(got)
	return wantOk && gotOk && wantNum == gotNum
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// SelectItems returns the items whose fields equal every key/value pair of
// match. A nil match value requires the field to be absent or null.
func (t Timeline) SelectItems(match Resource) []Resource {
	return t.FilterItems(func(item Resource) bool {
		for key, want := range match {
			if !fieldValueEqual(want, item[key]) {
				return false
			}
		}
		return true
	})
}

// SelectSingleItem returns the item matching the given fields, nil when none
// does. More than one match is an error.
func (t Timeline) SelectSingleItem(match Resource) (Resource, error) {
	items := t.SelectItems(match)
	if len(items) > 1 {
		return nil, &MultipleMatchesError{
			What: fmt.Sprintf("timeline items %v in %s", match, t.ResID()),
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// FindItem returns the item with the given resId.
func (t Timeline) FindItem(resID string) (Resource, error) {
	return t.SelectSingleItem(Resource{"resId": resID})
}

// FindByTitle returns the item with the given title.
func (t Timeline) FindByTitle(title string) (Resource, error) {
	return t.SelectSingleItem(Resource{"title": title})
}

// FindByDescription returns the item with the given description.
func (t Timeline) FindByDescription(description string) (Resource, error) {
	return t.SelectSingleItem(Resource{"description": description})
}

// FindIndexPointsByTitleAndOffset returns the index points with the given
// title and offset.
func (t Timeline) FindIndexPointsByTitleAndOffset(title string, offset any) []Resource {
	return t.SelectItems(Resource{"title": title, "offset": offset})
}

// FindIndexPointByTitleAndOffset returns the single index point with the
// given title and offset.
func (t Timeline) FindIndexPointByTitleAndOffset(title string, offset any) (Resource, error) {
	return t.SelectSingleItem(Resource{"title": title, "offset": offset})
}

// FindIndexPointsByOffsetAndDuration returns the index points with the given
// offset and duration.
func (t Timeline) FindIndexPointsByOffsetAndDuration(offset, duration any) []Resource {
	return t.SelectItems(Resource{"offset": offset, "duration": duration})
}

// FindIndexPointByOffsetAndDuration returns the single index point with the
// given offset and duration.
func (t Timeline) FindIndexPointByOffsetAndDuration(offset, duration any) (Resource, error) {
	return t.SelectSingleItem(Resource{"offset": offset, "duration": duration})
}

// FindIndexPointByOffset returns the single index point at the given offset.
func (t Timeline) FindIndexPointByOffset(offset any) (Resource, error) {
	return t.SelectSingleItem(Resource{"offset": offset})
}

// FindIndexPointsByEvent returns the technical timeline items for the given
// event.
func (t Timeline) FindIndexPointsByEvent(event string) []Resource {
	return t.SelectItems(Resource{"event": event})
}

// FindIndexPointByEventAndOffset returns the single technical timeline item
// for the given event and offset.
func (t Timeline) FindIndexPointByEventAndOffset(event string, offset any) (Resource, error) {
	return t.SelectSingleItem(Resource{"event": event, "offset": offset})
}

// FindIndexPointBySubTypeOffsetDuration returns the single internal timeline
// item with the given subType, offset and duration.
func (t Timeline) FindIndexPointBySubTypeOffsetDuration(subType string, offset, duration any) (Resource, error) {
	return t.SelectSingleItem(Resource{"subType": subType, "offset": offset, "duration": duration})
}

// FullTimelineItem returns the single rights timeline item of the given item
// type that applies to the full timeline.
func (t Timeline) FullTimelineItem(itemType string) (Resource, error) {
	return t.SelectSingleItem(Resource{"appliesToFullTimeline": true, "type": itemType})
}

// StabilizeOrder sorts the order-free collections of the representation so
// two fetches of the same aggregate compare equal: subjects by title,
// spatials by name, contributors by contact title plus role resId.
func (t Timeline) StabilizeOrder() {
	sortCollection(t.Resource, "subjects", func(r Resource) string {
		return stringField(r, "title")
	})
	sortCollection(t.Resource, "spatials", func(r Resource) string {
		return stringField(r, "name")
	})
	sortCollection(t.Resource, "contributors", func(r Resource) string {
		contact, _ := r.reference("contact")
		role, _ := r.reference("role")
		return stringField(contact, "title") + role.ResID()
	})
}

func sortCollection(r Resource, name string, key func(Resource) string) {
	raw, ok := r[name].([]any)
	if !ok {
		return
	}
	sort.SliceStable(raw, func(i, j int) bool {
		a, _ := raw[i].(map[string]any)
		b, _ := raw[j].(map[string]any)
		return key(Resource(a)) < key(Resource(b))
	})
}
