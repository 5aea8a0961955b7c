package mma_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/internal/mma"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// codeTableServer fakes the upstream code-table endpoint, serving the
// given items for every category.
func codeTableServer(t *testing.T, items []map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/caisBYIS/comm/selectGtcdList.json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"GtCdlist": items})
	}))
}

func newTestClient(t *testing.T, baseURL string) *mma.Client {
	t.Helper()
	transport := mma.NewTransport(mma.TransportConfig{BaseURL: baseURL}, logger.NewNop())
	return mma.NewClient(transport, logger.NewNop())
}

func codes(items []domain.CodeName) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Code)
	}
	return out
}

func assertCodes(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codes = %v, want %v", got, want)
		}
	}
}

func TestGetServiceTypesFiltersInternalCodes(t *testing.T) {
	server := codeTableServer(t, []map[string]string{
		{"gongtong_cd": "1", "gtcd_nm": "산업기능요원"},
		{"gongtong_cd": "2", "gtcd_nm": "전문연구요원"},
		{"gongtong_cd": "4", "gtcd_nm": "내부구분"},
		{"gongtong_cd": "41", "gtcd_nm": "내부구분2"},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	got := client.GetServiceTypes(context.Background())

	assertCodes(t, codes(got), []string{"1", "2"})
}

func TestGetCompanySizesFiltersHiddenTiers(t *testing.T) {
	server := codeTableServer(t, []map[string]string{
		{"gongtong_cd": "01", "gtcd_nm": "대기업"},
		{"gongtong_cd": "02", "gtcd_nm": "중견기업"},
		{"gongtong_cd": "03", "gtcd_nm": "비공개"},
		{"gongtong_cd": "031", "gtcd_nm": "비공개2"},
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	got := client.GetCompanySizes(context.Background())

	assertCodes(t, codes(got), []string{"01", "02"})
}

func TestGetIndustryTypesLeafFilter(t *testing.T) {
	table := []map[string]string{
		{"gongtong_cd": "10000", "gtcd_nm": "branch root"},          // second-to-fifth all zero
		{"gongtong_cd": "11000", "gtcd_nm": "category header"},      // third-to-fifth zero
		{"gongtong_cd": "11100", "gtcd_nm": "subcategory header"},   // fourth-to-fifth zero
		{"gongtong_cd": "11123", "gtcd_nm": "정보처리"},              // leaf
		{"gongtong_cd": "11999", "gtcd_nm": "게임소프트웨어"},        // leaf
		{"gongtong_cd": "12345", "gtcd_nm": "excluded branch 12"},
		{"gongtong_cd": "13345", "gtcd_nm": "excluded branch 13"},
		{"gongtong_cd": "14345", "gtcd_nm": "excluded branch 14"},
		{"gongtong_cd": "21123", "gtcd_nm": "other service type"},
		{"gongtong_cd": "111", "gtcd_nm": "short code, tolerated"},
	}

	server := codeTableServer(t, table)
	defer server.Close()
	client := newTestClient(t, server.URL)

	tests := []struct {
		name        string
		serviceType string
		want        []string
	}{
		{"industrial leaves", "1", []string{"11123", "11999", "111"}},
		{"professional leaves", "2", []string{"21123"}},
		{"empty service type", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.GetIndustryTypes(context.Background(), tt.serviceType)
			assertCodes(t, codes(got), tt.want)
		})
	}
}

func TestGetCitiesEmptyProvinceSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	got := client.GetCities(context.Background(), "")

	if got != nil {
		t.Errorf("GetCities(\"\") = %v, want nil", got)
	}
	if called {
		t.Error("empty province must not hit the upstream")
	}
}

func TestGetProvinces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/caisBYIS/comm/selectSidoList.json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sidoList": []map[string]string{
				{"sido_addr": "서울특별시"},
				{"sido_addr": "부산광역시"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	got := client.GetProvinces(context.Background())

	assertCodes(t, codes(got), []string{"서울특별시", "부산광역시"})
	if len(got) > 0 && got[0].Name != got[0].Code {
		t.Errorf("province Name = %q, want same as Code %q", got[0].Name, got[0].Code)
	}
}

func TestTaxonomyDegradesToEmptyOnUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	if got := client.GetServiceTypes(ctx); len(got) != 0 {
		t.Errorf("GetServiceTypes = %v, want empty", got)
	}
	if got := client.GetProvinces(ctx); len(got) != 0 {
		t.Errorf("GetProvinces = %v, want empty", got)
	}
	if got := client.GetCities(ctx, "서울특별시"); len(got) != 0 {
		t.Errorf("GetCities = %v, want empty", got)
	}
}

func TestSearchCompaniesDegradesToEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "timeout", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	params := &domain.CompanySearchParams{ServiceType: "1", IndustryCodes: []string{"11123"}}
	got := client.SearchCompanies(context.Background(), params)

	if got.TotalCount != 0 || got.CurrentPage != 1 || got.TotalPages != 1 {
		t.Errorf("result = %+v, want zeroed", got)
	}
	if got.Companies == nil {
		t.Error("Companies must be non-nil")
	}
}

func TestSearchCompaniesParsesUpstreamPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/caisBYIS/search/byjjecgeomsaek.do" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("eopjong_gbcd") != "1" {
			http.Error(w, "missing service type", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(resultPageHTML))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	params := &domain.CompanySearchParams{ServiceType: "1", IndustryCodes: []string{"11123"}}
	got := client.SearchCompanies(context.Background(), params)

	if got.TotalCount != 42 {
		t.Errorf("TotalCount = %d, want 42", got.TotalCount)
	}
	if len(got.Companies) != 2 {
		t.Errorf("len(Companies) = %d, want 2", len(got.Companies))
	}
}
