// Package api exposes the search, taxonomy, ranking and relay endpoints
// over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/internal/mma"
	"github.com/jiwonMe/work-mma-sdk/internal/ranking"
	"github.com/jiwonMe/work-mma-sdk/internal/service"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// rankCacheControl lets edge caches serve the ranking briefly and
// revalidate in the background.
const rankCacheControl = "public, s-maxage=30, stale-while-revalidate=60"

// backgroundTimeout bounds work detached from a request, like keyword
// recording after the response has been sent.
const backgroundTimeout = 5 * time.Second

func timeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), backgroundTimeout)
}

// Handler holds HTTP request handlers.
type Handler struct {
	searchService  *service.SearchService
	taxonomyClient *mma.Client
	rankingService *ranking.Service
	logger         logger.Logger
}

// NewHandler creates a new handler instance.
func NewHandler(
	searchService *service.SearchService,
	taxonomyClient *mma.Client,
	rankingService *ranking.Service,
	log logger.Logger,
) *Handler {
	return &Handler{
		searchService:  searchService,
		taxonomyClient: taxonomyClient,
		rankingService: rankingService,
		logger:         log,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// Search handles company search requests (both GET and POST). A searched
// company name is recorded into the popularity ranking without blocking
// or failing the search response.
func (h *Handler) Search(c *gin.Context) {
	var params domain.CompanySearchParams

	if c.Request.Method == http.MethodGet {
		params = parseSearchQuery(c)
	} else {
		if err := c.ShouldBindJSON(&params); err != nil {
			h.logger.Warn("Invalid search request body", logger.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:     "Invalid request body: " + err.Error(),
				Code:      "INVALID_REQUEST",
				Timestamp: time.Now(),
			})
			return
		}
	}

	// Advanced searches need a service type and industries; a quick
	// name-only lookup does not.
	if params.CompanyName == "" && !params.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "Either eopche_nm or eopjong_gbcd with eopjong_cd is required",
			Code:      "VALIDATION_ERROR",
			Timestamp: time.Now(),
		})
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), &params)
	if err != nil {
		h.logger.Error("Search failed",
			logger.Error(err),
			logger.String("company_name", params.CompanyName),
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:     "Upstream search failed",
			Code:      "UPSTREAM_ERROR",
			Timestamp: time.Now(),
		})
		return
	}

	if keyword := strings.TrimSpace(params.CompanyName); keyword != "" {
		go h.recordKeyword(keyword)
	}

	c.JSON(http.StatusOK, result)
}

// recordKeyword records a searched company name in the background.
func (h *Handler) recordKeyword(keyword string) {
	ctx, cancel := timeoutContext()
	defer cancel()

	if _, err := h.rankingService.Record(ctx, keyword); err != nil {
		h.logger.Warn("Failed to record search keyword",
			logger.Error(err),
			logger.String("keyword", keyword),
		)
	}
}

// parseSearchQuery maps query parameters onto search params. Parameter
// names match the upstream form fields, same as the JSON body.
func parseSearchQuery(c *gin.Context) domain.CompanySearchParams {
	params := domain.CompanySearchParams{
		ServiceType: c.Query("eopjong_gbcd"),
		CompanySize: c.Query("gegyumo_cd"),
		CompanyName: c.Query("eopche_nm"),
		Province:    c.Query("sido_addr"),
		City:        c.Query("sigungu_addr"),
		Recruiting:  c.Query("chaeyongym"),
	}
	if codes := c.Query("eopjong_cd"); codes != "" {
		params.IndustryCodes = strings.Split(codes, ",")
	}
	if quotas := c.Query("bjinwonym"); quotas != "" {
		params.QuotaTypes = strings.Split(quotas, ",")
	}
	if page := c.Query("pageIndex"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			params = params.WithPage(p)
		}
	}
	return params
}

// ServiceTypes handles GET /api/v1/taxonomy/service-types.
func (h *Handler) ServiceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.taxonomyClient.GetServiceTypes(c.Request.Context()))
}

// CompanySizes handles GET /api/v1/taxonomy/company-sizes.
func (h *Handler) CompanySizes(c *gin.Context) {
	c.JSON(http.StatusOK, h.taxonomyClient.GetCompanySizes(c.Request.Context()))
}

// Industries handles GET /api/v1/taxonomy/industries?service_type=.
func (h *Handler) Industries(c *gin.Context) {
	serviceType := c.Query("service_type")
	if serviceType == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "service_type is required",
			Code:      "VALIDATION_ERROR",
			Timestamp: time.Now(),
		})
		return
	}
	industries := h.taxonomyClient.GetIndustryTypes(c.Request.Context(), serviceType)
	if industries == nil {
		industries = []domain.IndustryType{}
	}
	c.JSON(http.StatusOK, industries)
}

// Provinces handles GET /api/v1/taxonomy/provinces.
func (h *Handler) Provinces(c *gin.Context) {
	provinces := h.taxonomyClient.GetProvinces(c.Request.Context())
	if provinces == nil {
		provinces = []domain.RegionType{}
	}
	c.JSON(http.StatusOK, provinces)
}

// Cities handles GET /api/v1/taxonomy/cities?province=.
func (h *Handler) Cities(c *gin.Context) {
	province := c.Query("province")
	if province == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "province is required",
			Code:      "VALIDATION_ERROR",
			Timestamp: time.Now(),
		})
		return
	}
	cities := h.taxonomyClient.GetCities(c.Request.Context(), province)
	if cities == nil {
		cities = []domain.CityType{}
	}
	c.JSON(http.StatusOK, cities)
}

// SearchRank handles GET /api/v1/search-rank?limit= with edge-cacheable
// headers.
func (h *Handler) SearchRank(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	response := h.rankingService.Top(c.Request.Context(), limit)

	c.Header("Cache-Control", rankCacheControl)
	c.JSON(http.StatusOK, response)
}

// recordRequest is the POST /api/v1/search-rank/record body.
type recordRequest struct {
	Keyword string `json:"keyword"`
}

// RecordSearchRank handles POST /api/v1/search-rank/record.
func (h *Handler) RecordSearchRank(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.RecordResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	keyword, err := h.rankingService.Record(c.Request.Context(), req.Keyword)
	switch {
	case errors.Is(err, ranking.ErrInvalidKeyword):
		c.JSON(http.StatusBadRequest, domain.RecordResponse{
			Success: false,
			Error:   err.Error(),
		})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, domain.RecordResponse{
			Success: false,
			Error:   "Ranking store unavailable",
		})
	default:
		c.JSON(http.StatusOK, domain.RecordResponse{
			Success: true,
			Keyword: keyword,
		})
	}
}
