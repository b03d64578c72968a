package mdb

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMDB is an in-memory stand-in for the service, serving canned
// representations by path and recording every request it sees.
type fakeMDB struct {
	t        *testing.T
	mux      *http.ServeMux
	server   *httptest.Server
	requests []*http.Request
}

func newFakeMDB(t *testing.T) *fakeMDB {
	t.Helper()
	f := &fakeMDB{t: t, mux: http.NewServeMux()}
	recorder := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		clone := r.Clone(r.Context())
		clone.Body = io.NopCloser(bytes.NewReader(raw))
		f.requests = append(f.requests, clone)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		f.mux.ServeHTTP(w, r)
	})
	f.server = httptest.NewServer(recorder)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeMDB) url(path string) string {
	return f.server.URL + path
}

func (f *fakeMDB) serveJSON(pattern string, status int, body any) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(f.t, json.NewEncoder(w).Encode(body))
	})
}

func (f *fakeMDB) serveCreate(pattern, location string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", f.url(location))
		w.WriteHeader(http.StatusCreated)
	})
}

func (f *fakeMDB) client(t *testing.T) *Client {
	t.Helper()
	client, err := New(&Config{
		BaseURL:       f.server.URL,
		UserID:        "test-user",
		CorrelationID: "test-correlation",
		SourceSystem:  "test-system",
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func selfLinked(resID, href string, extra Resource) Resource {
	r := Resource{
		"resId": resID,
		"links": []any{
			map[string]any{"rel": RelSelf, "href": href},
		},
	}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

func TestNew(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("requires base URL and user", func(t *testing.T) {
		_, err := New(&Config{UserID: "u"})
		assert.Error(t, err)
		_, err = New(&Config{BaseURL: "http://localhost:22338"})
		assert.Error(t, err)
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		_, err := New(&Config{BaseURL: "ftp://example/", UserID: "u"})
		assert.Error(t, err)
	})

	t.Run("localhost helper", func(t *testing.T) {
		client, err := Localhost("u", "corr")
		require.NoError(t, err)
		defer client.Close()
		assert.Equal(t, "http://localhost:22338/api", client.apiBase)
	})
}

func TestIdentifyingHeaders(t *testing.T) {
	f := newFakeMDB(t)
	f.serveJSON("/api/resolve", http.StatusOK, Resource{"resId": "x"})
	client := f.client(t)

	_, err := client.Resolve(context.Background(), "http://id.nrk.no/2016/mdb/masterEO/x")
	require.NoError(t, err)

	require.Len(t, f.requests, 1)
	got := f.requests[0].Header
	assert.Equal(t, "test-user", got.Get(HeaderUserID))
	assert.Equal(t, "test-correlation", got.Get(HeaderTransaction))
	assert.Equal(t, "test-system", got.Get(HeaderSourceSystem))
	assert.Equal(t, "default-batch-id", got.Get(HeaderBatch))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestCreateMasterEO(t *testing.T) {
	f := newFakeMDB(t)
	meoURI := "/masterEO/00000000-0000-0000-0000-000000000001"
	f.serveCreate("/api/masterEO", meoURI)
	f.serveJSON(meoURI, http.StatusOK, selfLinked(
		"http://id.nrk.no/2016/mdb/masterEO/00000000-0000-0000-0000-000000000001",
		"unused", Resource{"type": TypeMasterEO, "title": "t"}))
	client := f.client(t)

	listener := &RecordingChangeListener{}
	client.SetChangeListener(listener)

	created, err := client.CreateMasterEO(context.Background(), Resource{"title": "t"})
	require.NoError(t, err)
	assert.Equal(t, TypeMasterEO, created.Type())
	assert.Equal(t, "t", created.Resource["title"])

	// POST to the api method, then GET of the Location header.
	require.Len(t, f.requests, 2)
	assert.Equal(t, http.MethodPost, f.requests[0].Method)
	assert.Equal(t, "/api/masterEO", f.requests[0].URL.Path)
	assert.Equal(t, http.MethodGet, f.requests[1].Method)
	assert.Equal(t, meoURI, f.requests[1].URL.Path)

	changes := listener.PopChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeCreate, changes[0].Kind)
	assert.Equal(t, created.ResID(), changes[0].ResID)
}

func TestCreateAttachesOwnerReferences(t *testing.T) {
	f := newFakeMDB(t)
	moURI := "/mediaObject/1"
	f.serveCreate("/api/mediaObject", moURI)
	f.serveJSON(moURI, http.StatusOK, Resource{
		"resId": "http://id.nrk.no/2016/mdb/mediaObject/1",
		"type":  TypeMediaObject,
	})
	client := f.client(t)

	masterEO := AsMasterEO(Resource{"resId": "http://id.nrk.no/2016/mdb/masterEO/7"})
	payload := Resource{"title": "part 1"}
	_, err := client.CreateMediaObject(context.Background(), masterEO, payload)
	require.NoError(t, err)

	var posted map[string]any
	require.NoError(t, json.NewDecoder(f.requests[0].Body).Decode(&posted))
	assert.Equal(t, "part 1", posted["title"])
	assert.Equal(t, map[string]any{"resId": masterEO.ResID()}, posted["masterEO"])

	// The caller's payload is not mutated.
	_, present := payload["masterEO"]
	assert.False(t, present)
}

func TestCreatePublicationEventRejectsEmptyPayload(t *testing.T) {
	f := newFakeMDB(t)
	client := f.client(t)

	_, err := client.CreatePublicationEvent(context.Background(),
		AsMasterEO(Resource{"resId": "meo"}), Resource{})
	assert.Error(t, err)
	assert.Empty(t, f.requests)
}

func TestAddOnRel(t *testing.T) {
	t.Run("unknown relation issues no request", func(t *testing.T) {
		f := newFakeMDB(t)
		client := f.client(t)

		owner := selfLinked("meo-1", f.url("/masterEO/1"), nil)
		_, err := client.AddOnRel(context.Background(), owner, RelSubjects, Resource{"title": "x"})
		assert.True(t, IsRelationNotFound(err))
		assert.Empty(t, f.requests)
	})

	t.Run("posts to the relation link", func(t *testing.T) {
		f := newFakeMDB(t)
		f.serveJSON("/masterEO/1/subjects", http.StatusOK, Resource{"resId": "subject-1"})
		client := f.client(t)

		owner := Resource{
			"resId": "meo-1",
			"links": []any{
				map[string]any{"rel": RelSubjects, "href": f.url("/masterEO/1/subjects")},
			},
		}
		listener := &RecordingChangeListener{}
		client.SetChangeListener(listener)

		created, err := client.AddSubject(context.Background(), owner, Resource{"title": "x"})
		require.NoError(t, err)
		assert.Equal(t, "subject-1", created.ResID())

		require.Len(t, f.requests, 1)
		assert.Equal(t, http.MethodPost, f.requests[0].Method)

		changes := listener.PopChanges()
		require.Len(t, changes, 1)
		assert.Equal(t, ChangeAdd, changes[0].Kind)
		assert.Equal(t, RelSubjects, changes[0].Topic)
	})
}

func TestOpenRel(t *testing.T) {
	f := newFakeMDB(t)
	f.serveJSON("/vg/1", http.StatusOK, Resource{"resId": "vg-1", "type": TypeVersionGroup})
	client := f.client(t)

	t.Run("via links section", func(t *testing.T) {
		owner := Resource{
			"links": []any{
				map[string]any{"rel": "versionGroup", "href": f.url("/vg/1")},
			},
		}
		res, err := client.OpenRel(context.Background(), owner, "versionGroup")
		require.NoError(t, err)
		assert.Equal(t, "vg-1", res.ResID())
	})

	t.Run("via embedded reference href", func(t *testing.T) {
		owner := Resource{
			"versionGroup": map[string]any{"href": f.url("/vg/1")},
		}
		res, err := client.OpenRel(context.Background(), owner, "versionGroup")
		require.NoError(t, err)
		assert.Equal(t, "vg-1", res.ResID())
	})
}

func TestUpdate(t *testing.T) {
	f := newFakeMDB(t)
	f.mux.HandleFunc("/masterEO/1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Location", f.url("/masterEO/1"))
			w.WriteHeader(http.StatusAccepted)
		default:
			w.Header().Set("Content-Type", "application/json")
			err := json.NewEncoder(w).Encode(Resource{"resId": "meo-1", "title": "new"})
			require.NoError(t, err)
		}
	})
	client := f.client(t)

	owner := selfLinked("meo-1", f.url("/masterEO/1"), nil)
	updated, err := client.Update(context.Background(), owner, Resource{"title": "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated["title"])

	require.Len(t, f.requests, 2)
	assert.Equal(t, http.MethodPost, f.requests[0].Method)
	assert.Equal(t, http.MethodGet, f.requests[1].Method)
}

func TestDelete(t *testing.T) {
	f := newFakeMDB(t)
	f.mux.HandleFunc("/masterEO/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	client := f.client(t)

	listener := &RecordingChangeListener{}
	client.SetChangeListener(listener)

	owner := selfLinked("meo-1", f.url("/masterEO/1"), nil)
	deleted, err := client.Delete(context.Background(), owner)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	changes := listener.PopChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeDelete, changes[0].Kind)
	assert.Equal(t, "meo-1", changes[0].ResID)
}

func TestOpenAll(t *testing.T) {
	f := newFakeMDB(t)
	f.serveJSON("/mo/1", http.StatusOK, Resource{"resId": "mo-1"})
	f.serveJSON("/mo/2", http.StatusOK, Resource{"resId": "mo-2"})
	client := f.client(t)

	masterEO := AsMasterEO(Resource{
		"mediaObjects": []any{
			map[string]any{"links": []any{map[string]any{"rel": RelSelf, "href": f.url("/mo/1")}}},
			map[string]any{"links": []any{map[string]any{"rel": RelSelf, "href": f.url("/mo/broken")}}},
			map[string]any{"links": []any{map[string]any{"rel": RelSelf, "href": f.url("/mo/2")}}},
		},
	})

	opened, err := client.OpenAll(context.Background(), masterEO.MediaObjects())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	require.Len(t, opened, 2)
	assert.Equal(t, "mo-1", opened[0].ResID())
	assert.Equal(t, "mo-2", opened[1].ResID())
}

func TestResolveMetadataMasterEO(t *testing.T) {
	f := newFakeMDB(t)
	client := f.client(t)

	metaURI := f.url("/masterEO/meta")
	f.serveJSON("/api/resolve", http.StatusOK, Resource{
		"resId":        "http://id.nrk.no/2016/mdb/masterEO/a",
		"type":         TypeMasterEO,
		"versionGroup": map[string]any{"links": []any{map[string]any{"rel": RelSelf, "href": f.url("/vg/1")}}},
	})
	f.serveJSON("/vg/1", http.StatusOK, Resource{
		"resId":       "http://id.nrk.no/2016/mdb/versionGroup/1",
		"metadataMeo": map[string]any{"links": []any{map[string]any{"rel": RelSelf, "href": metaURI}}},
	})
	f.serveJSON("/masterEO/meta", http.StatusOK, Resource{
		"resId":         "http://id.nrk.no/2016/mdb/masterEO/meta",
		"type":          TypeMasterEO,
		"isMetadataMeo": true,
	})

	meo, err := client.ResolveMetadataMasterEO(context.Background(), "http://id.nrk.no/2016/mdb/masterEO/a")
	require.NoError(t, err)
	assert.True(t, meo.IsMetadataMEO())
	assert.Equal(t, "http://id.nrk.no/2016/mdb/masterEO/meta", meo.ResID())
}

func TestReferenceSingle(t *testing.T) {
	t.Run("nothing matches", func(t *testing.T) {
		f := newFakeMDB(t)
		f.serveJSON("/api/references", http.StatusOK, []Resource{})
		client := f.client(t)

		res, err := client.ReferenceSingle(context.Background(), "pdid", "PRHO63000115")
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("single match is opened", func(t *testing.T) {
		f := newFakeMDB(t)
		f.serveJSON("/api/references", http.StatusOK, []Resource{
			selfLinked("meo-1", f.url("/masterEO/1"), nil),
		})
		f.serveJSON("/masterEO/1", http.StatusOK, Resource{"resId": "meo-1", "title": "full"})
		client := f.client(t)

		res, err := client.ReferenceSingle(context.Background(), "pdid", "PRHO63000115")
		require.NoError(t, err)
		assert.Equal(t, "full", res["title"])
	})

	t.Run("multiple matches fail", func(t *testing.T) {
		f := newFakeMDB(t)
		f.serveJSON("/api/references", http.StatusOK, []Resource{
			{"resId": "a"}, {"resId": "b"},
		})
		client := f.client(t)

		_, err := client.ReferenceSingle(context.Background(), "pdid", "x")
		var multiErr *MultipleMatchesError
		assert.ErrorAs(t, err, &multiErr)
	})
}

func TestForceHostRewrite(t *testing.T) {
	f := newFakeMDB(t)
	f.serveJSON("/masterEO/1", http.StatusOK, Resource{"resId": "meo-1"})

	serverURL := f.server.URL
	client, err := New(&Config{
		BaseURL:     serverURL,
		UserID:      "u",
		ForceHost:   serverURL[len("http://"):],
		ForceScheme: "http",
	})
	require.NoError(t, err)
	defer client.Close()

	// Link handed out with an unreachable internal host.
	res, err := client.OpenURL(context.Background(), "http://mdb.internal.example/masterEO/1")
	require.NoError(t, err)
	assert.Equal(t, "meo-1", res.ResID())
}

func TestCreateOrReplaceTimeline(t *testing.T) {
	f := newFakeMDB(t)
	client := f.client(t)

	t.Run("creates when no timeline of the type exists", func(t *testing.T) {
		f.serveCreate("/api/timeline", "/timeline/1")
		f.serveJSON("/timeline/1", http.StatusOK, Resource{
			"resId": "tl-1", "type": TimelineTypeRights,
		})

		masterEO := AsMasterEO(Resource{"resId": "meo-1"})
		created, err := client.CreateOrReplaceTimeline(context.Background(), masterEO, NewRightsTimeline(nil))
		require.NoError(t, err)
		assert.Equal(t, TimelineTypeRights, created.Type())
	})

	t.Run("replaces the existing timeline of the type", func(t *testing.T) {
		f.mux.HandleFunc("/timeline/existing", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			w.Header().Set("Content-Type", "application/json")
			err := json.NewEncoder(w).Encode(Resource{"resId": "tl-2", "type": TimelineTypeRights})
			require.NoError(t, err)
		})

		masterEO := AsMasterEO(Resource{
			"resId": "meo-1",
			"timelines": []any{
				map[string]any{
					"subType": TimelineTypeRights,
					"links":   []any{map[string]any{"rel": RelSelf, "href": f.url("/timeline/existing")}},
				},
			},
		})
		replaced, err := client.CreateOrReplaceTimeline(context.Background(), masterEO, NewRightsTimeline(nil))
		require.NoError(t, err)
		assert.Equal(t, "tl-2", replaced.ResID())
	})
}

func TestCreateRightsTimelineRejectsOtherTypes(t *testing.T) {
	f := newFakeMDB(t)
	client := f.client(t)

	_, err := client.CreateRightsTimeline(context.Background(),
		AsMasterEO(Resource{"resId": "meo-1"}),
		NewTimeline(TimelineTypeTechnical, nil))
	assert.Error(t, err)
	assert.Empty(t, f.requests)
}

func TestFindSerie(t *testing.T) {
	t.Run("unwraps the serie array", func(t *testing.T) {
		f := newFakeMDB(t)
		f.serveJSON("/api/serie/by_title", http.StatusOK, Resource{
			"serie": []any{map[string]any{"resId": "serie-1", "title": "Dagsrevyen"}},
		})
		client := f.client(t)

		serie, err := client.FindSerie(context.Background(), "Dagsrevyen", "pdid")
		require.NoError(t, err)
		assert.Equal(t, "serie-1", serie.ResID())
	})

	t.Run("nil when no serie matches", func(t *testing.T) {
		f := newFakeMDB(t)
		f.serveJSON("/api/serie/by_title", http.StatusOK, Resource{"serie": []any{}})
		client := f.client(t)

		serie, err := client.FindSerie(context.Background(), "Unknown", "pdid")
		require.NoError(t, err)
		assert.Nil(t, serie)
	})
}

func TestCreateEpisode(t *testing.T) {
	f := newFakeMDB(t)
	f.serveCreate("/api/serie/season-1/episode", "/masterEO/ep")
	f.serveJSON("/masterEO/ep", http.StatusOK, Resource{"resId": "ep-1"})
	client := f.client(t)

	created, err := client.CreateEpisode(context.Background(), "season-1", Resource{"title": "ep"})
	require.NoError(t, err)
	assert.Equal(t, "ep-1", created.ResID())
	assert.Equal(t, "/api/serie/season-1/episode", f.requests[0].URL.Path)
}
