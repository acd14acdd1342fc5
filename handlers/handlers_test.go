package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/gofiber/fiber/v2"
)

const testAPIKey = "secret-key"

// upstreams are stub Airstack, Neynar and Warpcast servers with call counters
type upstreams struct {
	airstack      *httptest.Server
	neynar        *httptest.Server
	warpcast      *httptest.Server
	airstackCalls int64
	neynarCalls   int64
	warpcastCalls int64

	// airstackResponses maps an operation name to the response body
	airstackResponses map[string]string
	neynarStatus      int
	neynarBody        string
	warpcastStatus    int
	warpcastBody      string

	lastVariables atomic.Value
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{
		airstackResponses: map[string]string{},
		neynarStatus:      http.StatusOK,
		neynarBody:        `{"cast":{"hash":"0xresolved"}}`,
		warpcastStatus:    http.StatusOK,
		warpcastBody:      `{"result":{"user":{"fid":3}}}`,
	}

	u.airstack = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&u.airstackCalls, 1)
		var request struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&request)
		u.lastVariables.Store(request.Variables)

		for operation, body := range u.airstackResponses {
			if strings.Contains(request.Query, "query "+operation+"(") {
				_, _ = w.Write([]byte(body))
				return
			}
		}
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	u.neynar = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&u.neynarCalls, 1)
		w.WriteHeader(u.neynarStatus)
		_, _ = w.Write([]byte(u.neynarBody))
	}))
	u.warpcast = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&u.warpcastCalls, 1)
		w.WriteHeader(u.warpcastStatus)
		_, _ = w.Write([]byte(u.warpcastBody))
	}))

	t.Cleanup(func() {
		u.airstack.Close()
		u.neynar.Close()
		u.warpcast.Close()
	})
	return u
}

func (u *upstreams) totalCalls() int64 {
	return atomic.LoadInt64(&u.airstackCalls) + atomic.LoadInt64(&u.neynarCalls) + atomic.LoadInt64(&u.warpcastCalls)
}

func newTestApp(t *testing.T, u *upstreams, store services.KeyValueStore, registry *shared.MetricsRegistry) *fiber.App {
	t.Helper()
	factory := shared.NewHTTPClientFactory(2 * time.Second)
	t.Cleanup(factory.CleanupAllClients)

	upstreamConfig := func(url, key string) config.UpstreamConfig {
		return config.UpstreamConfig{BaseURL: url, APIKey: key, Timeout: 2 * time.Second}
	}

	airstack := services.NewAirstackClient(upstreamConfig(u.airstack.URL, "airstack-key"), factory, nil)
	neynar := services.NewNeynarClient(upstreamConfig(u.neynar.URL, "neynar-key"), factory, nil)
	warpcast := services.NewWarpcastClient(upstreamConfig(u.warpcast.URL, ""), factory, nil)

	backend := config.CacheBackendMemory
	if store == nil {
		backend = config.CacheBackendNone
	}
	cache := services.NewCacheService(store, backend, nil)

	return NewApp(Dependencies{
		APIKey:  testAPIKey,
		Users:   services.NewUserService(airstack, warpcast),
		Casts:   services.NewCastService(airstack, services.NewCastResolver(cache, neynar)),
		Cache:   cache,
		Metrics: registry,
	})
}

func doRequest(t *testing.T, app *fiber.App, method, target string, headers map[string]string) (int, string, http.Header) {
	t.Helper()
	request := httptest.NewRequest(method, target, nil)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, target, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return response.StatusCode, string(body), response.Header
}

func get(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	status, body, _ := doRequest(t, app, http.MethodGet, target, map[string]string{APIKeyHeader: testAPIKey})
	return status, body
}

func assertResponse(t *testing.T, gotStatus int, gotBody string, wantStatus int, wantBody string) {
	t.Helper()
	if gotStatus != wantStatus {
		t.Errorf("expected status %d, got %d (body %s)", wantStatus, gotStatus, gotBody)
	}
	if gotBody != wantBody {
		t.Errorf("expected body\n%s\ngot\n%s", wantBody, gotBody)
	}
}

func TestUnauthorizedRequestsNeverReachUpstream(t *testing.T) {
	u := newUpstreams(t)
	app := newTestApp(t, u, services.NewMemoryStore(10), nil)

	targets := []string{
		"/api/v1/users/123/earnings",
		"/api/v1/fids?handle=dwr",
		"/api/v1/far-scores?handle=dwr",
		"/api/v1/casts/embeds?castUrl=https://warpcast.com/a/0x1",
		"/api/v1/casts/earnings?castHash=0x1",
		"/api/v1/earnings?castHash=0x1",
	}
	keys := []map[string]string{
		nil,
		{APIKeyHeader: ""},
		{APIKeyHeader: "wrong"},
		{APIKeyHeader: strings.ToUpper(testAPIKey)},
		{APIKeyHeader: testAPIKey + "x"},
	}

	for _, target := range targets {
		for _, headers := range keys {
			status, body, _ := doRequest(t, app, http.MethodGet, target, headers)
			assertResponse(t, status, body, fiber.StatusUnauthorized, `{"error":"Unauthorized"}`)
		}
	}

	if calls := u.totalCalls(); calls != 0 {
		t.Errorf("expected zero upstream calls, got %d", calls)
	}
}

func TestPreflightDoesNotRequireAPIKey(t *testing.T) {
	u := newUpstreams(t)
	app := newTestApp(t, u, nil, nil)

	status, _, headers := doRequest(t, app, http.MethodOptions, "/api/v1/casts/earnings", map[string]string{
		"Origin":                        "https://frames.example",
		"Access-Control-Request-Method": "GET",
	})
	if status != fiber.StatusNoContent {
		t.Errorf("expected 204, got %d", status)
	}
	if headers.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("unexpected allow origin %q", headers.Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(headers.Get("Access-Control-Allow-Headers"), APIKeyHeader) {
		t.Errorf("expected %s in allowed headers, got %q", APIKeyHeader, headers.Get("Access-Control-Allow-Headers"))
	}
	if headers.Get("Access-Control-Max-Age") != "1728000" {
		t.Errorf("unexpected max age %q", headers.Get("Access-Control-Max-Age"))
	}

	status, _, headers = doRequest(t, app, http.MethodOptions, "/api/v1/fids", nil)
	if status != fiber.StatusNoContent {
		t.Errorf("expected 204 for bare OPTIONS, got %d", status)
	}
	if headers.Get("Access-Control-Allow-Origin") != "*" || headers.Get("Access-Control-Max-Age") != "1728000" {
		t.Errorf("expected CORS headers on bare OPTIONS, got %v", headers)
	}
	if !strings.Contains(headers.Get("Access-Control-Allow-Methods"), "GET") || !strings.Contains(headers.Get("Access-Control-Allow-Headers"), APIKeyHeader) {
		t.Errorf("expected allowed methods and headers on bare OPTIONS, got %v", headers)
	}
}

func TestUserEarnings(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["MoxieEarnings"] = `{"data":{
		"today":{"FarcasterMoxieEarningStat":null},
		"weekly":{"FarcasterMoxieEarningStat":null},
		"lifetime":{"FarcasterMoxieEarningStat":[{"allEarningsAmount":10.5,"castEarningsAmount":0,"frameDevEarningsAmount":0,"otherEarningsAmount":0}]}
	}}`
	app := newTestApp(t, u, nil, nil)

	status, body := get(t, app, "/api/v1/users/123/earnings")
	assertResponse(t, status, body, fiber.StatusOK,
		`{"data":{"today":null,"weekly":null,"lifetime":{"allEarningsAmount":10.5,"castEarningsAmount":0,"frameDevEarningsAmount":0,"otherEarningsAmount":0}}}`)

	variables, _ := u.lastVariables.Load().(map[string]interface{})
	if variables["fid"] != "123" {
		t.Errorf("expected fid variable 123, got %v", variables)
	}
}

func TestUserEarningsInvalidIdentifier(t *testing.T) {
	u := newUpstreams(t)
	app := newTestApp(t, u, nil, nil)

	for _, fid := range []string{"abc", "-1", "1.5"} {
		status, body := get(t, app, "/api/v1/users/"+fid+"/earnings")
		assertResponse(t, status, body, fiber.StatusBadRequest, `{"error":"Invalid user identifier: `+fid+`"}`)
	}
	if calls := u.totalCalls(); calls != 0 {
		t.Errorf("expected zero upstream calls, got %d", calls)
	}
}

func TestUserEarningsUpstreamFailure(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["MoxieEarnings"] = `{"data":null,"errors":[{"message":"unauthorized"}]}`
	app := newTestApp(t, u, nil, nil)

	status, body := get(t, app, "/api/v1/users/123/earnings")
	assertResponse(t, status, body, fiber.StatusInternalServerError, `{"error":"Internal server error"}`)
}

func TestFids(t *testing.T) {
	u := newUpstreams(t)
	app := newTestApp(t, u, nil, nil)

	status, body := get(t, app, "/api/v1/fids?handle=dwr.eth")
	assertResponse(t, status, body, fiber.StatusOK, `{"data":{"fid":3}}`)

	status, body = get(t, app, "/api/v1/fids")
	assertResponse(t, status, body, fiber.StatusBadRequest, `{"error":"Handle is required"}`)

	status, body = get(t, app, "/api/v1/fids?handle=")
	assertResponse(t, status, body, fiber.StatusBadRequest, `{"error":"Handle is required"}`)

	u.warpcastStatus = http.StatusNotFound
	u.warpcastBody = `{"errors":[{"message":"not found"}]}`
	status, body = get(t, app, "/api/v1/fids?handle=nobody")
	assertResponse(t, status, body, fiber.StatusNotFound, `{"error":"User not found"}`)
}

func TestFarScores(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["FarScores"] = `{"data":{"Socials":{"Social":[{"socialCapital":{"socialCapitalScore":12.25,"socialCapitalRank":42}}]}}}`
	app := newTestApp(t, u, nil, nil)

	status, body := get(t, app, "/api/v1/far-scores?handle=dwr.eth")
	assertResponse(t, status, body, fiber.StatusOK, `{"data":{"farScore":12.25,"farRank":42}}`)

	status, body = get(t, app, "/api/v1/far-scores")
	assertResponse(t, status, body, fiber.StatusBadRequest, `{"error":"Handle is required"}`)

	u.airstackResponses["FarScores"] = `{"data":{"Socials":{"Social":null}}}`
	status, body = get(t, app, "/api/v1/far-scores?handle=nobody")
	assertResponse(t, status, body, fiber.StatusOK, `{"data":null}`)
}

func TestCastEmbedsTypedURLSkipsResolver(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["CastEmbedsByUrl"] = `{"data":{"FarcasterCasts":{"Cast":[{"embeds":[{"url":"https://img"}]}]}}}`
	app := newTestApp(t, u, services.NewMemoryStore(10), nil)

	status, body := get(t, app, "/api/v1/casts/embeds?type=cast&castUrl=https://warpcast.com/x/y")
	assertResponse(t, status, body, fiber.StatusOK, `{"data":{"embeds":[{"url":"https://img"}]}}`)

	if calls := atomic.LoadInt64(&u.neynarCalls); calls != 0 {
		t.Errorf("resolver must not run, got %d Neynar calls", calls)
	}
	variables, _ := u.lastVariables.Load().(map[string]interface{})
	if variables["url"] != "https://warpcast.com/x/y" {
		t.Errorf("expected url variable, got %v", variables)
	}
}

func TestCastEmbedsUntypedURLNotFound(t *testing.T) {
	u := newUpstreams(t)
	u.neynarStatus = http.StatusNotFound
	u.neynarBody = `{"message":"not found"}`
	app := newTestApp(t, u, services.NewMemoryStore(10), nil)

	status, body := get(t, app, "/api/v1/casts/embeds?castUrl=https://warpcast.com/x/y")
	assertResponse(t, status, body, fiber.StatusNotFound, `{"error":"Cast not found"}`)

	if calls := atomic.LoadInt64(&u.airstackCalls); calls != 0 {
		t.Errorf("expected no GraphQL calls, got %d", calls)
	}
}

func TestCastEmbedsResolvedURLIsCached(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["CastAndReplyEmbedsByHash"] = `{"data":{"FarcasterCasts":{"Cast":[]},"FarcasterReplies":{"Reply":[{"embeds":[{"url":"https://a"},{"castId":{"fid":2,"hash":"0x2"}}]}]}}}`
	app := newTestApp(t, u, services.NewMemoryStore(10), nil)

	for i := 0; i < 2; i++ {
		status, body := get(t, app, "/api/v1/casts/embeds?castUrl=https://warpcast.com/x/y")
		assertResponse(t, status, body, fiber.StatusOK, `{"data":{"embeds":[{"url":"https://a"},{"url":null}]}}`)
	}

	if calls := atomic.LoadInt64(&u.neynarCalls); calls != 1 {
		t.Errorf("expected one Neynar call, got %d", calls)
	}
	variables, _ := u.lastVariables.Load().(map[string]interface{})
	if variables["hash"] != "0xresolved" {
		t.Errorf("expected resolved hash, got %v", variables)
	}
}

func TestCastEmbedsNoRecord(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["ReplyEmbedsByHash"] = `{"data":{"FarcasterReplies":{"Reply":null}}}`
	app := newTestApp(t, u, nil, nil)

	status, body := get(t, app, "/api/v1/casts/embeds?type=reply&castHash=0x1")
	assertResponse(t, status, body, fiber.StatusOK, `{"data":null}`)
}

func TestCastEarningsInvalidParameters(t *testing.T) {
	u := newUpstreams(t)
	app := newTestApp(t, u, nil, nil)

	for _, target := range []string{
		"/api/v1/casts/earnings",
		"/api/v1/earnings",
		"/api/v1/casts/earnings?castHash=&castUrl=",
		"/api/v1/casts/earnings?type=cast",
		"/api/v1/casts/earnings?type=thread&castHash=0x1",
		"/api/v1/casts/embeds?type=reply",
	} {
		status, body := get(t, app, target)
		assertResponse(t, status, body, fiber.StatusBadRequest, `{"error":"Invalid parameters"}`)
	}

	if calls := u.totalCalls(); calls != 0 {
		t.Errorf("expected zero upstream calls, got %d", calls)
	}
}

func TestCastEarnings(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["CastEarningsByHash"] = `{"data":{"FarcasterCasts":{"Cast":[{
		"castedBy":{"userId":"602","profileImage":"https://avatar","fnames":["betashop"]},
		"channel":{"name":"moxie","imageUrl":"https://channel"},
		"moxieEarningsSplit":[
			{"earningsAmount":1,"earnerType":"CREATOR"},
			{"earningsAmount":2,"earnerType":"CHANNEL_FANS"},
			{"earningsAmount":3,"earnerType":"NETWORK"},
			{"earningsAmount":4,"earnerType":"CREATOR_FANS"},
			{"earningsAmount":0.5,"earnerType":"MYSTERY"}
		]}]}}}`
	app := newTestApp(t, u, nil, nil)

	want := `{"data":{"earnings":{"channelFans":2,"creator":1,"network":3,"creatorFans":4,"total":10.5},` +
		`"creator":{"fid":602,"username":"betashop","profileImage":"https://avatar"},` +
		`"channel":{"name":"moxie","imageUrl":"https://channel"}}}`

	for _, target := range []string{"/api/v1/casts/earnings?type=cast&castHash=0xabc", "/api/v1/earnings?type=cast&castHash=0xabc"} {
		status, body := get(t, app, target)
		assertResponse(t, status, body, fiber.StatusOK, want)
	}
}

func TestCastEarningsResolutionFailure(t *testing.T) {
	u := newUpstreams(t)
	app := newTestApp(t, u, nil, nil)
	u.neynar.Close()

	status, body := get(t, app, "/api/v1/casts/earnings?type=reply&castUrl=https://warpcast.com/x/y")
	assertResponse(t, status, body, fiber.StatusInternalServerError, `{"error":"Failed to resolve cast: Neynar request failed"}`)

	if calls := atomic.LoadInt64(&u.airstackCalls); calls != 0 {
		t.Errorf("expected no GraphQL calls, got %d", calls)
	}
}

func TestCastEarningsGraphQLFailure(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["CastAndReplyEarningsByHash"] = `not json`
	app := newTestApp(t, u, nil, nil)

	status, body := get(t, app, "/api/v1/casts/earnings?castHash=0x1")
	assertResponse(t, status, body, fiber.StatusInternalServerError, `{"error":"Internal server error"}`)
}

type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("dial tcp: connection refused")
}

func (unavailableStore) Set(context.Context, string, []byte) error {
	return errors.New("dial tcp: connection refused")
}

func (unavailableStore) Ping(context.Context) error {
	return errors.New("dial tcp: connection refused")
}

func TestCastEmbedsWithCacheUnavailable(t *testing.T) {
	u := newUpstreams(t)
	u.airstackResponses["CastAndReplyEmbedsByHash"] = `{"data":{"FarcasterCasts":{"Cast":[{"embeds":[]}]}}}`
	app := newTestApp(t, u, unavailableStore{}, nil)

	for i := 0; i < 2; i++ {
		status, body := get(t, app, "/api/v1/casts/embeds?castUrl=https://warpcast.com/x/y")
		assertResponse(t, status, body, fiber.StatusOK, `{"data":{"embeds":[]}}`)
	}

	if calls := atomic.LoadInt64(&u.neynarCalls); calls != 2 {
		t.Errorf("expected every request to resolve upstream, got %d calls", calls)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name  string
		store services.KeyValueStore
		want  string
		cache string
	}{
		{"memory", services.NewMemoryStore(10), "ok", "ok"},
		{"disabled", nil, "ok", "disabled"},
		{"unavailable", unavailableStore{}, "degraded", "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, newUpstreams(t), tt.store, nil)

			status, body, _ := doRequest(t, app, http.MethodGet, "/health", nil)
			if status != fiber.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}

			var payload struct {
				Status    string `json:"status"`
				Cache     string `json:"cache"`
				Timestamp int64  `json:"timestamp"`
			}
			if err := json.Unmarshal([]byte(body), &payload); err != nil {
				t.Fatalf("invalid body %s: %v", body, err)
			}
			if payload.Status != tt.want || payload.Cache != tt.cache || payload.Timestamp == 0 {
				t.Errorf("unexpected health %+v", payload)
			}
		})
	}
}

func TestMetricsMiddlewareRecordsRoutes(t *testing.T) {
	u := newUpstreams(t)
	registry := shared.NewMetricsRegistry()
	app := newTestApp(t, u, nil, registry)

	get(t, app, "/api/v1/fids?handle=dwr.eth")
	get(t, app, "/api/v1/fids")

	snapshot := registry.Service("GET /api/v1/fids").Snapshot()
	if snapshot.Requests != 2 || snapshot.Failures != 0 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}
}
