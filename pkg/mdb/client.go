package mdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Client talks to one mdb instance on behalf of one user. It is a scoped
// handle: create it at the start of a usage block and release the underlying
// connections with Close when done, on both success and error paths.
//
// Independent calls may be issued concurrently; the client keeps no shared
// mutable state between them.
type Client struct {
	cfg        *Config
	apiBase    string
	httpClient *http.Client
	rest       *restClient
	listener   ChangeListener
	logger     hclog.Logger
}

// New creates a client from the given configuration. The configuration is
// validated and missing values are defaulted in place.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mdb: config is required")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mdb: invalid config: %w", err)
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("mdb: invalid base URL: %w", err)
	}

	httpClient := cfg.NewHTTPClient()
	logger := cfg.Logger.Named("mdb-client")

	return &Client{
		cfg:        cfg,
		apiBase:    parsed.Scheme + "://" + parsed.Host + "/api",
		httpClient: httpClient,
		rest:       newRestClient(httpClient, cfg.headers(), logger),
		listener:   nopChangeListener{},
		logger:     logger,
	}, nil
}

// Localhost creates a client against a locally running mdb instance.
func Localhost(userID, correlationID string) (*Client, error) {
	return New(&Config{
		BaseURL:       "http://localhost:22338",
		UserID:        userID,
		CorrelationID: correlationID,
	})
}

// Close releases the connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// SetChangeListener registers a listener notified of every mutation this
// client performs. Passing nil restores the discarding default.
func (c *Client) SetChangeListener(l ChangeListener) {
	if l == nil {
		c.listener = nopChangeListener{}
		return
	}
	c.listener = l
}

// rewriteLink applies the force-host override to a link handed out by the
// service.
func (c *Client) rewriteLink(link string) string {
	if c.cfg.ForceHost == "" {
		return link
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	parsed.Host = c.cfg.ForceHost
	parsed.Scheme = c.cfg.ForceScheme
	return parsed.String()
}

func (c *Client) apiMethod(subPath string) string {
	return c.apiBase + "/" + subPath
}

// OpenURL fetches the representation at the given URI. The result is
// returned exactly as the server sent it; nothing is cached or rewritten.
func (c *Client) OpenURL(ctx context.Context, uri string) (Resource, error) {
	resp, err := c.rest.get(ctx, c.rewriteLink(uri), nil, nil)
	if err != nil {
		return nil, err
	}
	return asResource(resp)
}

// Open fetches a fresh representation of the given resource via its self
// link. Embedded references work as well since they carry links of their
// own.
func (c *Client) Open(ctx context.Context, owner Resource) (Resource, error) {
	link, err := owner.SelfLink()
	if err != nil {
		return nil, err
	}
	return c.OpenURL(ctx, link)
}

// OpenRel resolves a relation against the resource's links section and
// fetches the target.
func (c *Client) OpenRel(ctx context.Context, owner Resource, rel string) (Resource, error) {
	link, err := owner.Link(rel)
	if err != nil {
		return nil, err
	}
	return c.OpenURL(ctx, link)
}

// OpenAll fetches every reference of the collection. All members are
// attempted; failures are aggregated into the returned error while the
// successfully fetched representations are still returned.
func (c *Client) OpenAll(ctx context.Context, refs RefCollection) ([]Resource, error) {
	var result *multierror.Error
	var out []Resource
	for _, ref := range refs.All() {
		res, err := c.Open(ctx, ref)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		out = append(out, res)
	}
	return out, result.ErrorOrNil()
}

// AddOnRel creates a sub-resource under the given relation of owner. The
// relation is resolved before anything is sent: an unknown relation fails
// with a RelationNotFoundError and issues no network request.
func (c *Client) AddOnRel(ctx context.Context, owner Resource, rel string, payload Resource) (Resource, error) {
	link, err := owner.Link(rel)
	if err != nil {
		return nil, err
	}
	resp, err := c.rest.post(ctx, c.rewriteLink(link), payload, nil)
	if err != nil {
		return nil, err
	}
	created, err := asResource(resp)
	if err != nil {
		return nil, err
	}
	c.listener.OnAdd(owner.ResID(), rel, payload)
	return created, nil
}

// Update posts partial changes to the resource's self link and follows the
// Location header to the refreshed representation.
func (c *Client) Update(ctx context.Context, owner Resource, updates Resource) (Resource, error) {
	link, err := owner.SelfLink()
	if err != nil {
		return nil, err
	}
	resp, err := c.rest.postFollow(ctx, c.rewriteLink(link), updates, nil)
	if err != nil {
		return nil, err
	}
	updated, err := asResource(resp)
	if err != nil {
		return nil, err
	}
	c.listener.OnChange(owner.ResID(), "", updates)
	return updated, nil
}

// Replace puts a full payload over the resource's self link.
func (c *Client) Replace(ctx context.Context, owner Resource, payload Resource) (Resource, error) {
	link, err := owner.SelfLink()
	if err != nil {
		return nil, err
	}
	resp, err := c.rest.put(ctx, c.rewriteLink(link), payload, nil)
	if err != nil {
		return nil, err
	}
	return asResource(resp)
}

// Delete removes the aggregate behind the resource's self link.
func (c *Client) Delete(ctx context.Context, owner Resource) (Resource, error) {
	link, err := owner.SelfLink()
	if err != nil {
		return nil, err
	}
	resp, err := c.rest.delete(ctx, c.rewriteLink(link), nil)
	if err != nil {
		return nil, err
	}
	deleted, err := asResource(resp)
	if err != nil {
		return nil, err
	}
	c.listener.OnDelete(owner.ResID())
	return deleted, nil
}

// Resolve looks up an aggregate by its resId. A missing aggregate surfaces
// as an error satisfying IsNotFound.
func (c *Client) Resolve(ctx context.Context, resID string) (Resource, error) {
	params := url.Values{"resId": []string{resID}}
	resp, err := c.rest.get(ctx, c.apiMethod("resolve"), params, nil)
	if err != nil {
		return nil, err
	}
	return asResource(resp)
}

// ResolveMetadataMasterEO resolves a resId to the master EO carrying the
// metadata of its version group, following the version group indirection
// when the resolved master EO is not the metadata carrier itself.
func (c *Client) ResolveMetadataMasterEO(ctx context.Context, resID string) (MasterEO, error) {
	res, err := c.Resolve(ctx, resID)
	if err != nil {
		return MasterEO{}, err
	}
	if res.Type() != TypeMasterEO {
		return MasterEO{}, fmt.Errorf("mdb: %s resolves to a %s, not a master EO", resID, res.Type())
	}
	meo := AsMasterEO(res)
	if meo.IsMetadataMEO() {
		return meo, nil
	}
	vgRef, ok := meo.VersionGroup()
	if !ok {
		return MasterEO{}, fmt.Errorf("mdb: master EO %s has no version group", resID)
	}
	vg, err := c.Open(ctx, vgRef)
	if err != nil {
		return MasterEO{}, err
	}
	metaRef, ok := AsVersionGroup(vg).MetadataMEO()
	if !ok {
		return MasterEO{}, fmt.Errorf("mdb: version group %s has no metadata master EO", vg.ResID())
	}
	meta, err := c.Open(ctx, metaRef)
	if err != nil {
		return MasterEO{}, err
	}
	return AsMasterEO(meta), nil
}

// References looks up the aggregates carrying an external reference of the
// given type and value.
func (c *Client) References(ctx context.Context, refType, value string) ([]Resource, error) {
	params := url.Values{"type": []string{refType}, "reference": []string{value}}
	resp, err := c.rest.get(ctx, c.apiMethod("references"), params, nil)
	if err != nil {
		return nil, err
	}
	return asResources(resp)
}

// ReferenceSingle looks up the single aggregate carrying the given external
// reference and opens its full representation. It returns nil when nothing
// matches and fails when more than one aggregate does.
func (c *Client) ReferenceSingle(ctx context.Context, refType, value string) (Resource, error) {
	hits, err := c.References(ctx, refType, value)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	if len(hits) > 1 {
		return nil, &MultipleMatchesError{
			What: fmt.Sprintf("%s=%s", refType, value),
		}
	}
	return c.Open(ctx, hits[0])
}

// create invokes a named api create method and reloads the created
// representation from the Location header.
func (c *Client) create(ctx context.Context, method string, payload Resource) (Resource, error) {
	resp, err := c.rest.postFollow(ctx, c.apiMethod(method), payload, nil)
	if err != nil {
		return nil, err
	}
	created, err := asResource(resp)
	if err != nil {
		return nil, err
	}
	topic := created.Type()
	if topic == "" {
		topic = method
	}
	c.listener.OnCreate(created.ResID(), topic, payload)
	c.logger.Info("created aggregate", "method", method, "resId", created.ResID())
	return created, nil
}

// CreateMasterEO creates a master editorial object.
func (c *Client) CreateMasterEO(ctx context.Context, masterEO Resource) (MasterEO, error) {
	created, err := c.create(ctx, "masterEO", masterEO)
	if err != nil {
		return MasterEO{}, err
	}
	return AsMasterEO(created), nil
}

// CreateMediaObject creates a media object owned by the master EO.
func (c *Client) CreateMediaObject(ctx context.Context, masterEO MasterEO, mediaObject Resource) (MediaObject, error) {
	created, err := c.create(ctx, "mediaObject", withOwner(mediaObject, "masterEO", masterEO.Resource))
	if err != nil {
		return MediaObject{}, err
	}
	return AsMediaObject(created), nil
}

// CreateMediaResource creates a media resource under the media object.
func (c *Client) CreateMediaResource(ctx context.Context, mediaObject MediaObject, mediaResource Resource) (MediaResource, error) {
	created, err := c.create(ctx, "mediaResource", withOwner(mediaResource, "mediaObject", mediaObject.Resource))
	if err != nil {
		return MediaResource{}, err
	}
	return AsMediaResource(created), nil
}

// CreateEssence creates an essence composed of the media resource, playing
// out the publication media object.
func (c *Client) CreateEssence(ctx context.Context, pmo PublicationMediaObject, mediaResource MediaResource, essence Resource) (Essence, error) {
	payload := withOwner(essence, "composedOf", mediaResource.Resource)
	payload["playoutOf"] = ownerRef(pmo.Resource)
	created, err := c.create(ctx, "essence", payload)
	if err != nil {
		return Essence{}, err
	}
	return AsEssence(created), nil
}

// CreatePublicationEvent creates a publication event publishing the master
// EO. An empty payload is rejected before anything is sent.
func (c *Client) CreatePublicationEvent(ctx context.Context, masterEO MasterEO, publicationEvent Resource) (PublicationEvent, error) {
	if len(publicationEvent) == 0 {
		return PublicationEvent{}, fmt.Errorf("mdb: cannot create an empty publication event")
	}
	created, err := c.create(ctx, "publicationEvent", withOwner(publicationEvent, "publishes", masterEO.Resource))
	if err != nil {
		return PublicationEvent{}, err
	}
	return AsPublicationEvent(created), nil
}

// CreatePublicationMediaObject creates the published version of a media
// object within a publication event.
func (c *Client) CreatePublicationMediaObject(ctx context.Context, event PublicationEvent, mediaObject MediaObject, pmo Resource) (PublicationMediaObject, error) {
	payload := withOwner(pmo, "publicationEvent", event.Resource)
	payload["publishedVersionOf"] = ownerRef(mediaObject.Resource)
	created, err := c.create(ctx, "publicationMediaObject", payload)
	if err != nil {
		return PublicationMediaObject{}, err
	}
	return AsPublicationMediaObject(created), nil
}

// CreateTimeline creates a timeline attached to the master EO.
func (c *Client) CreateTimeline(ctx context.Context, masterEO MasterEO, timeline Timeline) (Timeline, error) {
	created, err := c.create(ctx, "timeline", withOwner(timeline.Resource, "masterEO", masterEO.Resource))
	if err != nil {
		return Timeline{}, err
	}
	return AsTimeline(created), nil
}

// CreateTimelineShallow creates the timeline without its items; items are
// added afterwards with AddTimelineItem.
func (c *Client) CreateTimelineShallow(ctx context.Context, masterEO MasterEO, timeline Timeline) (Timeline, error) {
	payload := withOwner(timeline.Resource, "masterEO", masterEO.Resource)
	delete(payload, "items")
	created, err := c.create(ctx, "timeline", payload)
	if err != nil {
		return Timeline{}, err
	}
	return AsTimeline(created), nil
}

// CreateRightsTimeline creates a rights timeline. A payload carrying a
// different timeline type is rejected.
func (c *Client) CreateRightsTimeline(ctx context.Context, masterEO MasterEO, timeline Timeline) (Timeline, error) {
	switch timeline.Type() {
	case "":
		timeline = AsTimeline(withOwner(timeline.Resource, "masterEO", masterEO.Resource))
		timeline.Resource["type"] = TimelineTypeRights
		created, err := c.create(ctx, "timeline", timeline.Resource)
		if err != nil {
			return Timeline{}, err
		}
		return AsTimeline(created), nil
	case TimelineTypeRights:
		return c.CreateTimeline(ctx, masterEO, timeline)
	}
	return Timeline{}, fmt.Errorf("mdb: attempted to create a rights timeline with type %s", timeline.Type())
}

// ReplaceTimeline replaces the content of an existing timeline.
func (c *Client) ReplaceTimeline(ctx context.Context, masterEO MasterEO, existing Timeline, timeline Timeline) (Timeline, error) {
	replaced, err := c.Replace(ctx, existing.Resource, withOwner(timeline.Resource, "masterEO", masterEO.Resource))
	if err != nil {
		return Timeline{}, err
	}
	return AsTimeline(replaced), nil
}

// CreateOrReplaceTimeline replaces the master EO's timeline of the same
// type when one exists, and creates the timeline otherwise.
func (c *Client) CreateOrReplaceTimeline(ctx context.Context, masterEO MasterEO, timeline Timeline) (Timeline, error) {
	for _, existing := range masterEO.Timelines().All() {
		if existing.SubType() == timeline.Type() {
			return c.ReplaceTimeline(ctx, masterEO, AsTimeline(existing), timeline)
		}
	}
	return c.CreateTimeline(ctx, masterEO, timeline)
}

// AddSubject links a subject under the owner's subjects relation.
func (c *Client) AddSubject(ctx context.Context, owner Resource, subject Resource) (Resource, error) {
	return c.AddOnRel(ctx, owner, RelSubjects, subject)
}

// AddReference links an external reference under the owner's references
// relation.
func (c *Client) AddReference(ctx context.Context, owner Resource, reference Resource) (Resource, error) {
	return c.AddOnRel(ctx, owner, RelReferences, reference)
}

// AddCategory links a category under the owner's categories relation.
func (c *Client) AddCategory(ctx context.Context, owner Resource, category Resource) (Resource, error) {
	return c.AddOnRel(ctx, owner, RelCategories, category)
}

// AddContributor links a contributor under the owner's contributors
// relation.
func (c *Client) AddContributor(ctx context.Context, owner Resource, contributor Resource) (Resource, error) {
	return c.AddOnRel(ctx, owner, RelContributors, contributor)
}

// AddLocation links a location under the owner's locations relation.
func (c *Client) AddLocation(ctx context.Context, owner Resource, location Resource) (Resource, error) {
	return c.AddOnRel(ctx, owner, RelLocations, location)
}

// AddTimelineItem appends an item to the timeline.
func (c *Client) AddTimelineItem(ctx context.Context, timeline Timeline, item Resource) (Resource, error) {
	return c.AddOnRel(ctx, timeline.Resource, RelItems, item)
}

// AddMediaResourceFormat links a format under the media resource.
func (c *Client) AddMediaResourceFormat(ctx context.Context, mediaResource MediaResource, format Resource) (Resource, error) {
	return c.AddOnRel(ctx, mediaResource.Resource, RelFormats, format)
}

// AddStoredDocument links a stored document under the master EO.
func (c *Client) AddStoredDocument(ctx context.Context, masterEO MasterEO, document Resource) (Resource, error) {
	return c.AddOnRel(ctx, masterEO.Resource, RelDocuments, document)
}

// FindMediaObject looks up a media object by name. A missing media object
// surfaces as an error satisfying IsNotFound.
func (c *Client) FindMediaObject(ctx context.Context, name string) (MediaObject, error) {
	params := url.Values{"name": []string{name}}
	resp, err := c.rest.get(ctx, c.apiMethod("mediaObject/by-name"), params, nil)
	if err != nil {
		return MediaObject{}, err
	}
	res, err := asResource(resp)
	if err != nil {
		return MediaObject{}, err
	}
	return AsMediaObject(res), nil
}

// FindSerie looks up a serie by title within a master system. It returns
// nil when no serie matches.
func (c *Client) FindSerie(ctx context.Context, title, masterSystem string) (Resource, error) {
	params := url.Values{"title": []string{title}, "masterSystem": []string{masterSystem}}
	resp, err := c.rest.get(ctx, c.apiMethod("serie/by_title"), params, nil)
	if err != nil {
		return nil, err
	}
	res, err := asResource(resp)
	if err != nil {
		return nil, err
	}
	series := res.collection("serie")
	if len(series) == 0 {
		return nil, nil
	}
	return series[0], nil
}

// CreateSerie creates a serie with the given title under a master system.
func (c *Client) CreateSerie(ctx context.Context, title, masterSystem string) (Resource, error) {
	return c.create(ctx, "serie", Resource{"title": title, "masterSystem": masterSystem})
}

// CreateSeriePayload creates a serie from a full payload.
func (c *Client) CreateSeriePayload(ctx context.Context, serie Resource) (Resource, error) {
	return c.create(ctx, "serie", serie)
}

// CreateSeason creates a season.
func (c *Client) CreateSeason(ctx context.Context, season Resource) (Resource, error) {
	return c.create(ctx, "season", season)
}

// CreateEpisode creates an episode within the season.
func (c *Client) CreateEpisode(ctx context.Context, seasonID string, episode Resource) (Resource, error) {
	return c.create(ctx, fmt.Sprintf("serie/%s/episode", seasonID), episode)
}
