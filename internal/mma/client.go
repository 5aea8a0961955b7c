package mma

import (
	"context"
	"net/url"
	"strings"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// Upstream endpoints.
const (
	endpointCodeList      = "/caisBYIS/comm/selectGtcdList.json"
	endpointProvinceList  = "/caisBYIS/comm/selectSidoList.json"
	endpointCityList      = "/caisBYIS/comm/selectSigunguList.json"
	endpointCompanySearch = "/caisBYIS/search/byjjecgeomsaek.do"
)

// Code-table categories (gongtong_gbcd) served by the shared code-list
// endpoint.
const (
	codeTableServiceTypes = "432"
	codeTableCompanySizes = "423"
	codeTableIndustries   = "410"
)

// Client fetches taxonomies and company search results from the upstream.
// Every method degrades to an empty value on upstream failure; errors are
// logged, never returned.
type Client struct {
	transport *Transport
	logger    logger.Logger
}

// NewClient creates a Client over the given transport.
func NewClient(transport *Transport, log logger.Logger) *Client {
	return &Client{
		transport: transport,
		logger:    log,
	}
}

// codeListResponse is the shape of the shared code-table endpoint.
type codeListResponse struct {
	Items []codeItem `json:"GtCdlist"`
}

type codeItem struct {
	Code string `json:"gongtong_cd"`
	Name string `json:"gtcd_nm"`
}

// provinceListResponse is the shape of the province endpoint. The address
// string is both code and display name.
type provinceListResponse struct {
	Items []struct {
		Address string `json:"sido_addr"`
	} `json:"sidoList"`
}

// cityListResponse is the shape of the city endpoint.
type cityListResponse struct {
	Items []struct {
		Address string `json:"sigungu_addr"`
	} `json:"sigunguList"`
}

// GetServiceTypes fetches the service-type taxonomy. Codes starting with
// "4" are internal upstream categories and are dropped.
func (c *Client) GetServiceTypes(ctx context.Context) []domain.ServiceType {
	items := c.fetchCodeTable(ctx, codeTableServiceTypes)

	result := make([]domain.ServiceType, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item.Code, "4") {
			continue
		}
		result = append(result, domain.ServiceType{Code: item.Code, Name: item.Name})
	}
	return result
}

// GetCompanySizes fetches the company-size taxonomy. Codes starting with
// "03" are not public-facing tiers and are dropped.
func (c *Client) GetCompanySizes(ctx context.Context) []domain.CompanySize {
	items := c.fetchCodeTable(ctx, codeTableCompanySizes)

	result := make([]domain.CompanySize, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item.Code, "03") {
			continue
		}
		result = append(result, domain.CompanySize{Code: item.Code, Name: item.Name})
	}
	return result
}

// GetIndustryTypes fetches the industries selectable under the given
// service type. The upstream returns the whole hierarchical code table;
// only leaf codes of the requested branch are kept.
func (c *Client) GetIndustryTypes(ctx context.Context, serviceTypeCode string) []domain.IndustryType {
	if serviceTypeCode == "" {
		return nil
	}

	items := c.fetchCodeTable(ctx, codeTableIndustries)

	result := make([]domain.IndustryType, 0, len(items))
	for _, item := range items {
		if !isLeafIndustryCode(item.Code, serviceTypeCode) {
			continue
		}
		result = append(result, domain.IndustryType{Code: item.Code, Name: item.Name})
	}
	return result
}

// isLeafIndustryCode reports whether code is a selectable leaf of the
// given service type's branch, as opposed to a category-header code. The
// index ranges mirror the upstream's hierarchical code scheme; codes
// shorter than five digits fail none of the zero-suffix checks and pass
// through, matching the upstream's own tolerance.
func isLeafIndustryCode(code, serviceTypeCode string) bool {
	if !strings.HasPrefix(code, serviceTypeCode) {
		return false
	}
	if codeRange(code, 1, 5) == "0000" {
		return false
	}
	if strings.HasPrefix(code, "12") || strings.HasPrefix(code, "13") || strings.HasPrefix(code, "14") {
		return false
	}
	if codeRange(code, 2, 5) == "000" {
		return false
	}
	if codeRange(code, 3, 5) == "00" {
		return false
	}
	return true
}

// codeRange slices code with both bounds clamped to its length.
func codeRange(code string, start, end int) string {
	if start > len(code) {
		start = len(code)
	}
	if end > len(code) {
		end = len(code)
	}
	return code[start:end]
}

// GetProvinces fetches the province list.
func (c *Client) GetProvinces(ctx context.Context) []domain.RegionType {
	var resp provinceListResponse
	if err := c.transport.PostJSON(ctx, endpointProvinceList, url.Values{}, "sidoList", &resp); err != nil {
		c.logger.Warn("Failed to fetch provinces", logger.Error(err))
		return nil
	}

	result := make([]domain.RegionType, 0, len(resp.Items))
	for _, item := range resp.Items {
		result = append(result, domain.RegionType{Code: item.Address, Name: item.Address})
	}
	return result
}

// GetCities fetches the cities of the given province. An empty province
// yields nil without a request.
func (c *Client) GetCities(ctx context.Context, provinceCode string) []domain.CityType {
	if provinceCode == "" {
		return nil
	}

	params := url.Values{}
	params.Set("sido_addr", provinceCode)

	var resp cityListResponse
	if err := c.transport.PostJSON(ctx, endpointCityList, params, "sigunguList", &resp); err != nil {
		c.logger.Warn("Failed to fetch cities",
			logger.Error(err),
			logger.String("province", provinceCode),
		)
		return nil
	}

	result := make([]domain.CityType, 0, len(resp.Items))
	for _, item := range resp.Items {
		result = append(result, domain.CityType{Code: item.Address, Name: item.Address})
	}
	return result
}

// fetchCodeTable fetches one category of the shared code table, returning
// nil on any failure.
func (c *Client) fetchCodeTable(ctx context.Context, category string) []codeItem {
	params := url.Values{}
	params.Set("gongtong_gbcd", category)

	var resp codeListResponse
	if err := c.transport.PostJSON(ctx, endpointCodeList, params, "GtCdlist", &resp); err != nil {
		c.logger.Warn("Failed to fetch code table",
			logger.Error(err),
			logger.String("category", category),
		)
		return nil
	}
	return resp.Items
}

// Search submits a company search and parses the HTML result page.
// Transport failure is returned to the caller; a page that parses to
// nothing is a valid empty result.
func (c *Client) Search(ctx context.Context, params *domain.CompanySearchParams) (*domain.SearchResult, error) {
	body, err := c.transport.PostHTML(ctx, endpointCompanySearch, params.FormValues())
	if err != nil {
		return nil, err
	}
	return ParseSearchResult(body), nil
}

// SearchCompanies is Search with the failure mode flattened away: the
// upstream regularly times out and a single-category search treats that
// as "no results right now" rather than an error.
func (c *Client) SearchCompanies(ctx context.Context, params *domain.CompanySearchParams) *domain.SearchResult {
	result, err := c.Search(ctx, params)
	if err != nil {
		c.logger.Warn("Company search failed",
			logger.Error(err),
			logger.String("company_name", params.CompanyName),
			logger.String("service_type", params.ServiceType),
		)
		return domain.EmptySearchResult()
	}
	return result
}
