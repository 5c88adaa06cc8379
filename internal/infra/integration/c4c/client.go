package c4c

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/config"
	"github.com/xavierca1/crm-sync/internal/infra/http/middleware"
)

const integrationName = "c4c"

// Result is the outcome of a mutating call. A non-2xx answer is reported
// here with OK=false rather than as an error.
type Result struct {
	OK         bool
	StatusCode int
	Body       string
}

type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg config.C4CConfig, log zerolog.Logger) *Client {
	// CSRF tokens are bound to the session cookie they were issued with.
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		user:     cfg.User,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		log: log,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchCSRFToken asks C4C for an anti-forgery token for this session.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-csrf-token", "fetch")

	resp, _, err := c.do(req)
	if err != nil {
		return "", err
	}

	token := resp.Header.Get("x-csrf-token")
	if token == "" || strings.EqualFold(token, "required") {
		c.log.Error().Int("status", resp.StatusCode).Msg("[C4C] csrf token not returned")
		return "", ErrNoCSRFToken
	}
	return token, nil
}

// Count returns the size of T's collection.
func Count[T Resource](ctx context.Context, c *Client) (int, error) {
	var zero T
	u := c.baseURL + "/" + zero.collectionName() + "/$count"
	body, err := c.get(ctx, u)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("c4c: bad count for %s: %w", zero.collectionName(), err)
	}
	return n, nil
}

// Read lists T's collection. An empty q.Select falls back to T's default
// field set.
func Read[T Resource](ctx context.Context, c *Client, q Query) ([]T, error) {
	var zero T
	if q.Select == "" {
		q.Select = zero.selectFields()
	}
	return readPages[T](ctx, c, withQuery(c.baseURL+"/"+zero.collectionName(), q.values()), q.Top)
}

// ReadURIList reads a sub-collection addressed by an absolute URI, such as a
// deferred navigation property.
func ReadURIList[T any](ctx context.Context, c *Client, uri string, q Query) ([]T, error) {
	return readPages[T](ctx, c, withQuery(uri, q.values()), q.Top)
}

// readPages follows the server's __next links until the collection is
// exhausted. An explicit $top is a limit, so paging stops there.
func readPages[T any](ctx context.Context, c *Client, u string, top int) ([]T, error) {
	var out []T
	seen := map[string]bool{}
	for u != "" && !seen[u] {
		seen[u] = true
		body, err := c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		var env listEnvelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("c4c: decode %s: %w", u, err)
		}
		out = append(out, env.D.Results...)
		if top > 0 && len(out) >= top {
			return out[:top], nil
		}
		u = nextPage(env.D.Next)
	}
	return out, nil
}

func nextPage(next string) string {
	if next == "" || strings.Contains(next, "$format=") {
		return next
	}
	return withQuery(next, url.Values{"$format": {"json"}})
}

// ReadURI reads a single entity addressed by its URI into out.
func (c *Client) ReadURI(ctx context.Context, uri string, q Query, out any) error {
	body, err := c.get(ctx, withQuery(uri, q.values()))
	if err != nil {
		return err
	}
	var env entityEnvelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("c4c: decode %s: %w", uri, err)
	}
	if len(env.D.Results) == 0 {
		return fmt.Errorf("c4c: empty entity at %s", uri)
	}
	if err := json.Unmarshal(env.D.Results, out); err != nil {
		return fmt.Errorf("c4c: decode %s: %w", uri, err)
	}
	return nil
}

// ReadOwnerPartyUUID reads back the owner assigned to a lead after a write.
func (c *Client) ReadOwnerPartyUUID(ctx context.Context, leadURI string) (string, error) {
	var v ownerPartyView
	if err := c.ReadURI(ctx, leadURI, Query{Select: "OwnerPartyUUID"}, &v); err != nil {
		return "", err
	}
	return v.OwnerPartyUUID, nil
}

// Create POSTs payload to a collection name or an absolute URI. Success is
// 201 Created.
func (c *Client) Create(ctx context.Context, target, token string, payload any) (Created, error) {
	resp, body, err := c.send(ctx, http.MethodPost, c.resolve(target), token, payload)
	if err != nil {
		return Created{}, err
	}

	res := Result{StatusCode: resp.StatusCode, Body: string(body), OK: resp.StatusCode == http.StatusCreated}
	if !res.OK {
		c.rejected(http.MethodPost, target, res)
		return Created{Result: res}, nil
	}

	created, perr := parseCreated(resp.Header.Get("Content-Type"), body)
	if perr != nil {
		c.log.Warn().Err(perr).Str("target", target).Msg("[C4C] created, but response body could not be parsed")
	}
	created.Result = res
	return created, nil
}

// Update PATCHes the entity at uri. Success is 204 No Content.
func (c *Client) Update(ctx context.Context, uri, token string, payload any) (Result, error) {
	resp, body, err := c.send(ctx, http.MethodPatch, uri, token, payload)
	if err != nil {
		return Result{}, err
	}
	res := Result{StatusCode: resp.StatusCode, Body: string(body), OK: resp.StatusCode == http.StatusNoContent}
	if !res.OK {
		c.rejected(http.MethodPatch, uri, res)
	}
	return res, nil
}

// Delete removes the entity at uri. Success is 204 No Content.
func (c *Client) Delete(ctx context.Context, uri, token string) (Result, error) {
	resp, body, err := c.send(ctx, http.MethodDelete, uri, token, nil)
	if err != nil {
		return Result{}, err
	}
	res := Result{StatusCode: resp.StatusCode, Body: string(body), OK: resp.StatusCode == http.StatusNoContent}
	if !res.OK {
		c.rejected(http.MethodDelete, uri, res)
	}
	return res, nil
}

func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return c.baseURL + "/" + strings.TrimLeft(target, "/")
}

func (c *Client) send(ctx context.Context, method, u, token string, payload any) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("c4c: encode %s body: %w", method, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, u, reader)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-csrf-token", token)

	return c.do(req)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		middleware.RecordIntegrationError(integrationName)
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	if _, err := url.Parse(u); err != nil {
		return nil, fmt.Errorf("c4c: bad url %q: %w", u, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("c4c: build %s request: %w", method, err)
	}
	req.SetBasicAuth(c.user, c.password)
	return req, nil
}

// do executes req and drains the body. Only transport failures are errors.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.RecordIntegrationError(integrationName)
		return nil, nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		middleware.RecordIntegrationError(integrationName)
		return nil, nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("[C4C] request")
	return resp, body, nil
}

func (c *Client) rejected(method, target string, res Result) {
	middleware.RecordIntegrationError(integrationName)
	c.log.Warn().
		Str("method", method).
		Str("target", target).
		Int("status", res.StatusCode).
		Str("body", truncate(res.Body, 500)).
		Msg("[C4C] request rejected")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
