package mma

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
)

var (
	totalCountRe  = regexp.MustCompile(`총 게시물 : (\d+)건`)
	pageInfoRe    = regexp.MustCompile(`\((\d+)/(\d+) 페이지\)`)
	companyCodeRe = regexp.MustCompile(`byjjeopche_cd=([^&]+)`)
)

// ParseSearchResult extracts companies and pagination info from a search
// result page. Malformed or unexpected markup degrades to the zeroed
// result rather than failing: the page is trusted only as far as it
// matches the known layout.
func ParseSearchResult(html []byte) *domain.SearchResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.EmptySearchResult()
	}

	result := domain.EmptySearchResult()

	// Text() concatenates every matched element: some pages split the
	// summary across two .topics containers.
	topics := doc.Find(".topics").Text()
	if m := totalCountRe.FindStringSubmatch(topics); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.TotalCount = n
		}
	}
	if m := pageInfoRe.FindStringSubmatch(topics); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			result.CurrentPage = n
		}
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			result.TotalPages = n
		}
	}

	doc.Find(".brd_list_n tbody tr").Each(func(_ int, row *goquery.Selection) {
		// A single full-width cell is the "no results" sentinel row.
		if row.Find(`td[colspan="4"]`).Length() > 0 {
			return
		}

		link := row.Find("th.title a").First()
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return
		}

		company := domain.Company{Name: name}

		if href, ok := link.Attr("href"); ok {
			if m := companyCodeRe.FindStringSubmatch(href); m != nil {
				company.Code = m[1]
			}
		}

		cells := row.Find("td")
		if cells.Length() > 0 {
			company.SelectionYear = strings.TrimSpace(cells.Eq(0).Text())
		}
		if cells.Length() > 1 {
			company.RegionalOffice = strings.TrimSpace(cells.Eq(1).Text())
		}
		if cells.Length() > 2 {
			company.IsRecruiting = strings.TrimSpace(cells.Eq(2).Text()) == "모집중"
		}

		result.Companies = append(result.Companies, company)
	})

	return result
}
