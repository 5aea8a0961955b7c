package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jiwonMe/work-mma-sdk/internal/api"
	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/internal/mma"
	"github.com/jiwonMe/work-mma-sdk/internal/ranking"
	"github.com/jiwonMe/work-mma-sdk/internal/service"
	infrahttp "github.com/jiwonMe/work-mma-sdk/pkg/http"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

const searchPageHTML = `<html><body>
<div class="topics">총 게시물 : 1건 (1/1 페이지)</div>
<table class="brd_list_n"><tbody>
<tr>
  <th class="title"><a href="/caisBYIS/search/byjjecgeomsaekView.do?byjjeopche_cd=A001">테스트업체</a></th>
  <td>2024</td><td>서울지방병무청</td><td>모집중</td>
</tr>
</tbody></table>
</body></html>`

// fakeStore is an in-memory ranking.Store.
type fakeStore struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
	values map[string]string
	down   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scores: make(map[string]map[string]float64),
		values: make(map[string]string),
	}
}

func (f *fakeStore) IncrementScore(_ context.Context, key, member string, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return context.DeadlineExceeded
	}
	if f.scores[key] == nil {
		f.scores[key] = make(map[string]float64)
	}
	f.scores[key][member] += delta
	return nil
}

func (f *fakeStore) TopMembers(_ context.Context, key string, count int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, context.DeadlineExceeded
	}
	members := make([]string, 0, len(f.scores[key]))
	for member := range f.scores[key] {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		return f.scores[key][members[i]] > f.scores[key][members[j]]
	})
	if count >= 0 && int64(len(members)) > count {
		members = members[:count]
	}
	return members, nil
}

func (f *fakeStore) ReplaceRanks(_ context.Context, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[string]float64, len(members))
	for i, member := range members {
		set[member] = float64(len(members) - i)
	}
	f.scores[key] = set
	return nil
}

func (f *fakeStore) GetValue(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", context.DeadlineExceeded
	}
	return f.values[key], nil
}

func (f *fakeStore) SetValue(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return context.DeadlineExceeded
	}
	f.values[key] = value
	return nil
}

// upstreamServer fakes the government site: code tables, regions and the
// HTML search page.
func upstreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/caisBYIS/comm/selectGtcdList.json":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"GtCdlist": []map[string]string{
					{"gongtong_cd": "1", "gtcd_nm": "산업기능요원"},
					{"gongtong_cd": "11123", "gtcd_nm": "정보처리"},
				},
			})
		case "/caisBYIS/comm/selectSidoList.json":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sidoList": []map[string]string{{"sido_addr": "서울특별시"}},
			})
		case "/caisBYIS/search/byjjecgeomsaek.do":
			_, _ = w.Write([]byte(searchPageHTML))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestRouter(t *testing.T, upstreamURL string, store ranking.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	transport := mma.NewTransport(mma.TransportConfig{BaseURL: upstreamURL}, log)
	client := mma.NewClient(transport, log)
	searchService := service.NewSearchService(client, log)
	rankingService := ranking.NewService(store, log)
	handler := api.NewHandler(searchService, client, rankingService, log)
	relay := api.NewRelayHandler(upstreamURL, infrahttp.NewDefaultClient(), log)

	router := gin.New()
	api.SetupServiceRoutes(router, handler, relay)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestSearchEndpoint(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, newFakeStore())

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/search?eopche_nm=테스트", "")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var result domain.SearchResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The same fixture page answers both category searches; the merge
	// keeps one entry.
	if result.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", result.TotalCount)
	}
	if result.Companies[0].ServiceType != domain.CategoryIndustrial {
		t.Errorf("ServiceType = %q, want industrial", result.Companies[0].ServiceType)
	}
}

func TestSearchEndpointPageIndex(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, newFakeStore())

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/search?eopche_nm=테스트&pageIndex=2", "")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var result domain.SearchResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want requested page 2", result.CurrentPage)
	}
}

func TestSearchEndpointPostBody(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, newFakeStore())

	body := `{"eopjong_gbcd":"1","eopjong_cd":["11123"]}`
	recorder := doRequest(t, router, http.MethodPost, "/api/v1/search", body)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, newFakeStore())

	tests := []struct {
		name   string
		target string
	}{
		{"no params", "/api/v1/search"},
		{"service type without industries", "/api/v1/search?eopjong_gbcd=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(t, router, http.MethodGet, tt.target, "")
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", recorder.Code)
			}
		})
	}
}

func TestTaxonomyEndpoints(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, newFakeStore())

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/taxonomy/provinces", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("provinces status = %d", recorder.Code)
	}
	var provinces []domain.RegionType
	if err := json.Unmarshal(recorder.Body.Bytes(), &provinces); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(provinces) != 1 || provinces[0].Code != "서울특별시" {
		t.Errorf("provinces = %v", provinces)
	}

	recorder = doRequest(t, router, http.MethodGet, "/api/v1/taxonomy/industries", "")
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("industries without service_type: status = %d, want 400", recorder.Code)
	}

	recorder = doRequest(t, router, http.MethodGet, "/api/v1/taxonomy/industries?service_type=1", "")
	if recorder.Code != http.StatusOK {
		t.Errorf("industries status = %d", recorder.Code)
	}
}

func TestSearchRankEndpoint(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	store := newFakeStore()
	_ = store.ReplaceRanks(context.Background(), "search:rank", []string{"A", "B"})
	router := newTestRouter(t, upstream.URL, store)

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/search-rank?limit=5", "")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("Cache-Control"); !strings.Contains(got, "s-maxage=30") {
		t.Errorf("Cache-Control = %q", got)
	}
	var response domain.RankingResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !response.Success || len(response.Rankings) != 2 {
		t.Errorf("response = %+v", response)
	}
}

func TestRecordEndpoint(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()

	tests := []struct {
		name     string
		body     string
		down     bool
		wantCode int
	}{
		{"valid keyword", `{"keyword":"삼성전자"}`, false, http.StatusOK},
		{"empty keyword", `{"keyword":"  "}`, false, http.StatusBadRequest},
		{"malformed body", `{keyword}`, false, http.StatusBadRequest},
		{"store down", `{"keyword":"삼성전자"}`, true, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.down = tt.down
			router := newTestRouter(t, upstream.URL, store)

			recorder := doRequest(t, router, http.MethodPost, "/api/v1/search-rank/record", tt.body)
			if recorder.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", recorder.Code, tt.wantCode, recorder.Body.String())
			}
		})
	}
}

func TestRelayEndpoint(t *testing.T) {
	upstream := upstreamServer(t)
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, newFakeStore())

	t.Run("json passthrough", func(t *testing.T) {
		body := `{"endpoint":"/caisBYIS/comm/selectSidoList.json","params":{},"method":"POST"}`
		recorder := doRequest(t, router, http.MethodPost, "/api/mma-proxy", body)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := payload["sidoList"]; !ok {
			t.Errorf("payload = %s, want sidoList passthrough", recorder.Body.String())
		}
	})

	t.Run("html wrapped", func(t *testing.T) {
		body := `{"endpoint":"/caisBYIS/search/byjjecgeomsaek.do","params":{"eopche_nm":"테스트"}}`
		recorder := doRequest(t, router, http.MethodPost, "/api/mma-proxy", body)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		var payload struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.Contains(payload.Data, "테스트업체") {
			t.Errorf("data = %q, want wrapped HTML", payload.Data)
		}
	})

	t.Run("rejects relative endpoint", func(t *testing.T) {
		body := `{"endpoint":"caisBYIS/x.json"}`
		recorder := doRequest(t, router, http.MethodPost, "/api/mma-proxy", body)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", recorder.Code)
		}
	})

	t.Run("upstream failure yields error envelope", func(t *testing.T) {
		closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		closed.Close()
		brokenRouter := newTestRouter(t, closed.URL, newFakeStore())

		body := `{"endpoint":"/caisBYIS/comm/selectSidoList.json"}`
		recorder := doRequest(t, brokenRouter, http.MethodPost, "/api/mma-proxy", body)
		if recorder.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", recorder.Code)
		}
	})
}
