package mdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// restClient issues the individual HTTP requests. It holds no request
// specific state beyond the identifying headers; errors are surfaced to the
// caller untranslated and never retried.
type restClient struct {
	httpClient *http.Client
	global     http.Header
	logger     hclog.Logger
}

// response is the unpacked result of a single request.
type response struct {
	uri      string
	status   int
	location string
	body     any // decoded JSON body; nil for 204 and empty 202 responses
}

func newRestClient(httpClient *http.Client, global http.Header, logger hclog.Logger) *restClient {
	return &restClient{
		httpClient: httpClient,
		global:     global,
		logger:     logger.Named("transport"),
	}
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (t *restClient) do(ctx context.Context, method, uri string, params url.Values, payload any, headers http.Header) (*response, error) {
	requestURI := uri
	if len(params) > 0 {
		parsed, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid request URI %q: %w", uri, err)
		}
		q := parsed.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		parsed.RawQuery = q.Encode()
		requestURI = parsed.String()
	}

	var bodyReader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body for %s: %w", requestURI, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURI, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", requestURI, err)
	}

	for k, vs := range t.global {
		for _, v := range vs {
			if v != "" {
				req.Header.Set(k, v)
			}
		}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	t.logger.Debug("issuing request", "method", method, "uri", requestURI)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, requestURI, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", requestURI, err)
	}

	result := &response{
		uri:      requestURI,
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
	}

	empty := resp.StatusCode == http.StatusNoContent ||
		(resp.StatusCode == http.StatusAccepted && len(raw) == 0)

	contentType := resp.Header.Get("Content-Type")
	if !empty && len(raw) > 0 {
		if isJSONContentType(contentType) {
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err != nil {
				if resp.StatusCode >= 400 {
					// Keep the raw text; the status error matters more.
					result.body = string(raw)
				} else {
					return nil, &DecodeError{URI: requestURI, ContentType: contentType, Err: err}
				}
			} else {
				result.body = decoded
			}
		} else {
			result.body = string(raw)
		}
	}

	if resp.StatusCode >= 400 {
		return nil, &RequestError{
			URI:        requestURI,
			StatusCode: resp.StatusCode,
			Body:       result.body,
			Payload:    payload,
		}
	}

	if !empty && len(raw) > 0 && !isJSONContentType(contentType) {
		return nil, &DecodeError{
			URI:         requestURI,
			ContentType: contentType,
			Err:         fmt.Errorf("expected application/json, got %q", contentType),
		}
	}

	return result, nil
}

func (t *restClient) get(ctx context.Context, uri string, params url.Values, headers http.Header) (*response, error) {
	return t.do(ctx, http.MethodGet, uri, params, nil, headers)
}

func (t *restClient) post(ctx context.Context, uri string, payload any, headers http.Header) (*response, error) {
	return t.do(ctx, http.MethodPost, uri, nil, payload, headers)
}

func (t *restClient) put(ctx context.Context, uri string, payload any, headers http.Header) (*response, error) {
	return t.do(ctx, http.MethodPut, uri, nil, payload, headers)
}

func (t *restClient) delete(ctx context.Context, uri string, headers http.Header) (*response, error) {
	return t.do(ctx, http.MethodDelete, uri, nil, nil, headers)
}

// postFollow posts the payload and reloads the created representation from
// the Location header the service answers with.
func (t *restClient) postFollow(ctx context.Context, uri string, payload any, headers http.Header) (*response, error) {
	posted, err := t.do(ctx, http.MethodPost, uri, nil, payload, headers)
	if err != nil {
		return nil, err
	}
	if posted.location == "" {
		return nil, fmt.Errorf("POST %s returned no Location header to follow", uri)
	}
	return t.get(ctx, posted.location, nil, headers)
}

// asResource interprets a response body as a single JSON object.
func asResource(resp *response) (Resource, error) {
	if resp.body == nil {
		return nil, nil
	}
	obj, ok := resp.body.(map[string]any)
	if !ok {
		return nil, &DecodeError{
			URI: resp.uri,
			Err: fmt.Errorf("expected JSON object, got %T", resp.body),
		}
	}
	return Resource(obj), nil
}

// asResources interprets a response body as a JSON array of objects.
func asResources(resp *response) ([]Resource, error) {
	if resp.body == nil {
		return nil, nil
	}
	list, ok := resp.body.([]any)
	if !ok {
		return nil, &DecodeError{
			URI: resp.uri,
			Err: fmt.Errorf("expected JSON array, got %T", resp.body),
		}
	}
	out := make([]Resource, 0, len(list))
	for _, v := range list {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &DecodeError{
				URI: resp.uri,
				Err: fmt.Errorf("expected array of JSON objects, got element of type %T", v),
			}
		}
		out = append(out, Resource(obj))
	}
	return out, nil
}
