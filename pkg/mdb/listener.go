package mdb

import "fmt"

// ChangeListener receives a callback for every mutation the client performs.
// Listeners observe what this process sends, not what other writers do to
// the same aggregates.
type ChangeListener interface {
	// OnCreate is called after a new aggregate has been created.
	OnCreate(resID, topic string, payload Resource)

	// OnAdd is called after a sub-resource has been linked under a relation.
	OnAdd(resID, rel string, payload Resource)

	// OnChange is called after an update has been posted to an aggregate.
	OnChange(resID, topic string, changes Resource)

	// OnDelete is called after an aggregate has been deleted.
	OnDelete(resID string)
}

// nopChangeListener is the default listener; it discards everything.
type nopChangeListener struct{}

func (nopChangeListener) OnCreate(string, string, Resource) {}
func (nopChangeListener) OnAdd(string, string, Resource)    {}
func (nopChangeListener) OnChange(string, string, Resource) {}
func (nopChangeListener) OnDelete(string)                   {}

// ChangeKind classifies a recorded change.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "CREATE"
	ChangeAdd    ChangeKind = "ADD"
	ChangeModify ChangeKind = "CHANGE"
	ChangeDelete ChangeKind = "DELETE"
)

// Change is one recorded mutation.
type Change struct {
	ResID   string
	Kind    ChangeKind
	Topic   string
	Payload Resource
}

func (c Change) String() string {
	topic := ""
	if c.Topic != "" {
		topic = " " + c.Topic
	}
	return fmt.Sprintf("%s%s %s %v", c.Kind, topic, c.ResID, c.Payload)
}

// RecordingChangeListener keeps every observed change in order. It is not
// safe for concurrent use; attach one per call chain.
type RecordingChangeListener struct {
	changes []Change
}

// PopChanges clears the recorded changes, returning the values before
// clearing.
func (l *RecordingChangeListener) PopChanges() []Change {
	res := l.changes
	l.changes = nil
	return res
}

func (l *RecordingChangeListener) OnCreate(resID, topic string, payload Resource) {
	l.changes = append(l.changes, Change{ResID: resID, Kind: ChangeCreate, Topic: topic, Payload: payload})
}

func (l *RecordingChangeListener) OnAdd(resID, rel string, payload Resource) {
	l.changes = append(l.changes, Change{ResID: resID, Kind: ChangeAdd, Topic: rel, Payload: payload})
}

func (l *RecordingChangeListener) OnChange(resID, topic string, changes Resource) {
	l.changes = append(l.changes, Change{ResID: resID, Kind: ChangeModify, Topic: topic, Payload: changes})
}

func (l *RecordingChangeListener) OnDelete(resID string) {
	l.changes = append(l.changes, Change{ResID: resID, Kind: ChangeDelete})
}
