// transport.go
// ------------
// Transport is the single funnel every adapter call goes through. It builds
// the HTTP request, applies the auth interceptor, serializes parameters,
// consults the response cache and the throttle, classifies the response and
// records metrics.
//
// There is no retry logic here: a failure is returned to the caller at once.
//
// Entry points:
// - API: session base URL, bearer token, legacy 401 hook, optional cache.
// - Client: base URL and headers from the request only, no interceptors.
// - APIClient: like Client, with the modern 401 hook.
package omsbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opengovern/oms-bridge/cache"
)

// QueueFunc takes over a request flagged Queue, e.g. for offline replay.
type QueueFunc func(ctx context.Context, req *Request) error

type TransportConfig struct {
	Backend     BackendKind
	Credentials CredentialProvider
	HTTPClient  *http.Client
	Timeout     time.Duration // used when HTTPClient is nil

	CacheMaxAge time.Duration
	CacheStore  cache.Store // defaults to an in-memory store

	RateLimiter *RateLimiter
	Metrics     *Metrics
	Logger      logrus.FieldLogger
	QueueTask   QueueFunc
}

type Transport struct {
	kind        BackendKind
	credentials CredentialProvider
	httpClient  *http.Client
	cache       *responseCache
	limiter     *RateLimiter
	metrics     *Metrics
	log         logrus.FieldLogger
	queueTask   QueueFunc
}

// pipeline selects the interceptors applied to one call.
type pipeline struct {
	name       string
	useSession bool
	expiryHook bool        // signal expiry on 401...
	expiryKind BackendKind // ...only when the transport targets this backend
}

var (
	apiPipeline       = pipeline{name: "api", useSession: true, expiryHook: true, expiryKind: LegacyBackend}
	clientPipeline    = pipeline{name: "client"}
	apiClientPipeline = pipeline{name: "apiClient", expiryHook: true, expiryKind: ModernBackend}
)

func NewTransport(cfg TransportConfig) *Transport {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	t := &Transport{
		kind:        cfg.Backend,
		credentials: cfg.Credentials,
		httpClient:  httpClient,
		limiter:     cfg.RateLimiter,
		metrics:     cfg.Metrics,
		log:         log.WithField("backend", cfg.Backend.String()),
		queueTask:   cfg.QueueTask,
	}
	if cfg.CacheMaxAge > 0 {
		t.cache = newResponseCache(cfg.CacheStore, cfg.CacheMaxAge)
	}
	return t
}

// NewTransportFromConfig wires a transport from the process Config. store may
// be nil.
func NewTransportFromConfig(cfg *Config, creds CredentialProvider, store cache.Store, log logrus.FieldLogger) *Transport {
	return NewTransport(TransportConfig{
		Backend:     cfg.Backend,
		Credentials: creds,
		Timeout:     cfg.Timeout,
		CacheMaxAge: cfg.CacheMaxAge,
		CacheStore:  store,
		RateLimiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		Logger:      log,
	})
}

func (t *Transport) Kind() BackendKind { return t.kind }

func (t *Transport) API(ctx context.Context, req *Request) (*Response, error) {
	return t.execute(ctx, req, apiPipeline)
}

func (t *Transport) Client(ctx context.Context, req *Request) (*Response, error) {
	return t.execute(ctx, req, clientPipeline)
}

func (t *Transport) APIClient(ctx context.Context, req *Request) (*Response, error) {
	return t.execute(ctx, req, apiClientPipeline)
}

func (t *Transport) execute(ctx context.Context, req *Request, p pipeline) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var creds Credentials
	baseURL := req.BaseURL
	if p.useSession && t.credentials != nil {
		creds = t.credentials.Credentials()
		baseURL = creds.BaseURL
	}

	fullURL := joinURL(baseURL, req.Endpoint)
	if q := SerializeParams(req.Params); q != "" {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + q
	}

	log := t.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"pipeline":   p.name,
		"method":     method,
		"endpoint":   req.Endpoint,
	})

	if req.Queue && t.queueTask != nil {
		if err := t.queueTask(ctx, req); err != nil {
			return nil, fmt.Errorf("queue request: %w", err)
		}
		log.Debug("request queued")
		return &Response{StatusCode: http.StatusAccepted, Headers: map[string]string{}, Queued: true}, nil
	}

	useCache := p.useSession && req.Cache && method == http.MethodGet && t.cache.enabled()
	var key string
	if useCache {
		key = cacheKey(method, fullURL, creds.Token)
		if resp, ok := t.cache.get(ctx, key); ok {
			t.metrics.cacheHit(t.kind)
			log.Debug("served from cache")
			return resp, nil
		}
	}

	if err := t.limiter.Wait(ctx, t.kind); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	httpReq, err := t.newHTTPRequest(ctx, method, fullURL, req)
	if err != nil {
		return nil, err
	}
	if p.useSession && creds.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+creds.Token)
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.metrics.observe(t.kind, method, 0, time.Since(start))
		log.WithError(err).Debug("request failed")
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		t.metrics.observe(t.kind, method, 0, time.Since(start))
		return nil, fmt.Errorf("read response: %w", err)
	}
	t.metrics.observe(t.kind, method, httpResp.StatusCode, time.Since(start))

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    lowerHeaders(httpResp.Header),
		Data:       data,
	}
	log.WithField("status", resp.StatusCode).Debug("response received")

	if !resp.OK() {
		if resp.StatusCode == http.StatusUnauthorized && p.expiryHook && p.expiryKind == t.kind {
			t.notifyExpired(log)
		}
		return resp, &HTTPError{Response: resp}
	}

	if useCache {
		if err := t.cache.put(ctx, key, resp); err != nil {
			log.WithError(err).Warn("could not cache response")
		}
	}
	return resp, nil
}

func (t *Transport) newHTTPRequest(ctx context.Context, method, fullURL string, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		switch b := req.Body.(type) {
		case []byte:
			body = bytes.NewReader(b)
		case string:
			body = strings.NewReader(b)
		default:
			encoded, err := json.Marshal(b)
			if err != nil {
				return nil, fmt.Errorf("marshal body: %w", err)
			}
			body = bytes.NewReader(encoded)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// notifyExpired raises the session-expiry signal. Session teardown itself is
// the credential provider's business.
func (t *Transport) notifyExpired(log logrus.FieldLogger) {
	log.Warn("unauthorized response, session expiry signalled")
	if n, ok := t.credentials.(ExpiryNotifier); ok {
		n.NotifyExpired(t.kind)
	}
}

func joinURL(base, endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if base == "" {
		return endpoint
	}
	if endpoint == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

func lowerHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, vals := range h {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}
	return headers
}

var _ Requester = (*Transport)(nil)
