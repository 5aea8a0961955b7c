package domain

// CodeName is a flat taxonomy entry as returned by the upstream code
// tables: an opaque code and its display name.
type CodeName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Taxonomy entry aliases. The upstream serves all of these from the same
// code-table endpoint; the distinct names keep call sites readable.
type (
	// ServiceType is an alternative-service category (복무형태).
	ServiceType = CodeName
	// CompanySize is a company-size tier (기업규모).
	CompanySize = CodeName
	// IndustryType is a leaf industry classification (업종).
	IndustryType = CodeName
	// RegionType is a province-level region (시도).
	RegionType = CodeName
	// CityType is a city/district within a province (시군구).
	CityType = CodeName
)

// ServiceCategory tags a company with the alternative-service category its
// search result came from.
type ServiceCategory string

const (
	// CategoryIndustrial is 산업기능요원.
	CategoryIndustrial ServiceCategory = "industrial"
	// CategoryProfessional is 전문연구요원/전문기능요원.
	CategoryProfessional ServiceCategory = "professional"
)

// Upstream category codes for the two recognized service types. Industry
// codes are hierarchical and share their leading digit with the service
// type they belong to.
const (
	CategoryIndustrialCode   = "1"
	CategoryProfessionalCode = "2"
)
