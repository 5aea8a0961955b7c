package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// CompanySearchParams is a company search query. JSON field names follow
// the upstream form parameters so the request body doubles as the form
// payload contract.
type CompanySearchParams struct {
	// ServiceType is the service-type code (eopjong_gbcd).
	ServiceType string `json:"eopjong_gbcd,omitempty"`
	// CompanySize is the optional company-size code (gegyumo_cd).
	CompanySize string `json:"gegyumo_cd,omitempty"`
	// IndustryCodes are the selected leaf industry codes (eopjong_cd).
	IndustryCodes []string `json:"eopjong_cd,omitempty"`
	// CompanyName is the free-text company name (eopche_nm).
	CompanyName string `json:"eopche_nm,omitempty"`
	// Province is the province code (sido_addr).
	Province string `json:"sido_addr,omitempty"`
	// City is the city/district code (sigungu_addr).
	City string `json:"sigungu_addr,omitempty"`
	// Recruiting is "Y" to restrict results to companies currently
	// recruiting (chaeyongym).
	Recruiting string `json:"chaeyongym,omitempty"`
	// QuotaTypes selects remaining-quota classes: "H" for active duty,
	// "B" for reserve (bjinwonym).
	QuotaTypes []string `json:"bjinwonym,omitempty"`
	// PageIndex is the 1-based result page.
	PageIndex int `json:"pageIndex,omitempty"`
}

// IsValid reports whether the params form a complete advanced search:
// a service type plus at least one industry code. Quick name-only
// searches bypass this check.
func (p *CompanySearchParams) IsValid() bool {
	return p.ServiceType != "" && len(p.IndustryCodes) > 0
}

// FormValues encodes the params as the upstream search form payload.
// Industry codes appear both as repeated eopjong_cd fields and as two
// comma-joined alias fields the upstream accepts interchangeably.
// Empty values are omitted entirely.
func (p *CompanySearchParams) FormValues() url.Values {
	values := url.Values{}

	if p.ServiceType != "" {
		values.Set("eopjong_gbcd", p.ServiceType)
	}
	if p.CompanySize != "" {
		values.Set("gegyumo_cd", p.CompanySize)
	}
	if len(p.IndustryCodes) > 0 {
		for _, code := range p.IndustryCodes {
			values.Add("eopjong_cd", code)
		}
		joined := strings.Join(p.IndustryCodes, ",")
		values.Set("eopjong_gbcd_list", joined)
		values.Set("al_eopjong_gbcd", joined)
	}
	if p.CompanyName != "" {
		values.Set("eopche_nm", p.CompanyName)
	}
	if p.Province != "" {
		values.Set("sido_addr", p.Province)
	}
	if p.City != "" {
		values.Set("sigungu_addr", p.City)
	}
	if p.Recruiting != "" {
		values.Set("chaeyongym", p.Recruiting)
	}
	for _, quota := range p.QuotaTypes {
		values.Add("bjinwonym", quota)
	}
	if p.PageIndex > 0 {
		values.Set("pageIndex", strconv.Itoa(p.PageIndex))
	}

	return values
}

// WithPage returns a copy of the params pointing at the given page.
func (p *CompanySearchParams) WithPage(page int) CompanySearchParams {
	clone := *p
	clone.PageIndex = page
	return clone
}

// WithServiceType returns a copy of the params with the given
// service-type code.
func (p *CompanySearchParams) WithServiceType(code string) CompanySearchParams {
	clone := *p
	clone.ServiceType = code
	return clone
}

// Company is a single scraped company record. Only the name is guaranteed;
// every other field degrades to its zero value when the upstream markup
// lacks it.
type Company struct {
	Name           string          `json:"name"`
	Code           string          `json:"code,omitempty"`
	SelectionYear  string          `json:"selectionYear,omitempty"`
	RegionalOffice string          `json:"regionalOffice,omitempty"`
	IsRecruiting   bool            `json:"isRecruiting"`
	ServiceType    ServiceCategory `json:"serviceType,omitempty"`
}

// DedupKey identifies a company across category searches: the upstream
// company code when present, otherwise the name.
func (c *Company) DedupKey() string {
	if c.Code != "" {
		return c.Code
	}
	return c.Name
}

// SearchResult is one page of company search results.
type SearchResult struct {
	TotalCount  int       `json:"totalCount"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Companies   []Company `json:"companies"`
}

// EmptySearchResult returns the zeroed result used when the upstream
// returns nothing usable.
func EmptySearchResult() *SearchResult {
	return &SearchResult{
		TotalCount:  0,
		CurrentPage: 1,
		TotalPages:  1,
		Companies:   []Company{},
	}
}
