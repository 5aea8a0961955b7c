package mma_test

import (
	"testing"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/internal/mma"
)

const resultPageHTML = `<!DOCTYPE html>
<html>
<body>
<div class="topics">총 게시물 : 42건 (2/5 페이지)</div>
<table class="brd_list_n">
<thead><tr><th>업체명</th><th>선정년도</th><th>지방청</th><th>채용</th></tr></thead>
<tbody>
<tr>
  <th class="title"><a href="/caisBYIS/search/byjjecgeomsaekView.do?byjjeopche_cd=A00123&amp;menu_id=m_m8_6">한빛소프트웨어(주)</a></th>
  <td>2024</td>
  <td>서울지방병무청</td>
  <td>모집중</td>
</tr>
<tr>
  <th class="title"><a href="/caisBYIS/search/byjjecgeomsaekView.do?byjjeopche_cd=B00456&amp;menu_id=m_m8_6">대한정밀기계</a></th>
  <td>2023</td>
  <td>부산울산지방병무청</td>
  <td>-</td>
</tr>
</tbody>
</table>
</body>
</html>`

const emptyPageHTML = `<!DOCTYPE html>
<html>
<body>
<div class="topics">총 게시물 : 0건 (1/1 페이지)</div>
<table class="brd_list_n">
<tbody>
<tr><td colspan="4">검색된 데이터가 없습니다.</td></tr>
</tbody>
</table>
</body>
</html>`

const missingLinkHTML = `<!DOCTYPE html>
<html>
<body>
<div class="topics">총 게시물 : 1건 (1/1 페이지)</div>
<table class="brd_list_n">
<tbody>
<tr>
  <th class="title"><a href="/caisBYIS/search/byjjecgeomsaekView.do?menu_id=m_m8_6">링크없는업체</a></th>
  <td>2022</td>
  <td>대구경북지방병무청</td>
  <td>모집중</td>
</tr>
</tbody>
</table>
</body>
</html>`

func TestParseSearchResult(t *testing.T) {
	result := mma.ParseSearchResult([]byte(resultPageHTML))

	if result.TotalCount != 42 {
		t.Errorf("TotalCount = %d, want 42", result.TotalCount)
	}
	if result.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2", result.CurrentPage)
	}
	if result.TotalPages != 5 {
		t.Errorf("TotalPages = %d, want 5", result.TotalPages)
	}
	if len(result.Companies) != 2 {
		t.Fatalf("len(Companies) = %d, want 2", len(result.Companies))
	}

	first := result.Companies[0]
	want := domain.Company{
		Name:           "한빛소프트웨어(주)",
		Code:           "A00123",
		SelectionYear:  "2024",
		RegionalOffice: "서울지방병무청",
		IsRecruiting:   true,
	}
	if first != want {
		t.Errorf("Companies[0] = %+v, want %+v", first, want)
	}

	second := result.Companies[1]
	if second.Code != "B00456" {
		t.Errorf("Companies[1].Code = %q, want %q", second.Code, "B00456")
	}
	if second.IsRecruiting {
		t.Error("Companies[1].IsRecruiting = true, want false")
	}
}

func TestParseSearchResultSplitSummary(t *testing.T) {
	html := `<html><body>
<div class="topics">총 게시물 : 17건</div>
<div class="topics">(2/2 페이지)</div>
<table class="brd_list_n"><tbody></tbody></table>
</body></html>`

	result := mma.ParseSearchResult([]byte(html))

	if result.TotalCount != 17 {
		t.Errorf("TotalCount = %d, want 17", result.TotalCount)
	}
	if result.CurrentPage != 2 || result.TotalPages != 2 {
		t.Errorf("pages = %d/%d, want 2/2", result.CurrentPage, result.TotalPages)
	}
}

func TestParseSearchResultEmptyPage(t *testing.T) {
	result := mma.ParseSearchResult([]byte(emptyPageHTML))

	if result.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", result.TotalCount)
	}
	if len(result.Companies) != 0 {
		t.Errorf("len(Companies) = %d, want 0", len(result.Companies))
	}
	if result.CurrentPage != 1 || result.TotalPages != 1 {
		t.Errorf("pages = %d/%d, want 1/1", result.CurrentPage, result.TotalPages)
	}
}

func TestParseSearchResultMissingCompanyCode(t *testing.T) {
	result := mma.ParseSearchResult([]byte(missingLinkHTML))

	if len(result.Companies) != 1 {
		t.Fatalf("len(Companies) = %d, want 1", len(result.Companies))
	}
	company := result.Companies[0]
	if company.Code != "" {
		t.Errorf("Code = %q, want empty", company.Code)
	}
	if company.Name != "링크없는업체" {
		t.Errorf("Name = %q, want %q", company.Name, "링크없는업체")
	}
}

func TestParseSearchResultGarbage(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty document", ""},
		{"no markup", "not html at all"},
		{"unrelated page", "<html><body><p>점검 중입니다</p></body></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mma.ParseSearchResult([]byte(tt.html))

			if result.TotalCount != 0 {
				t.Errorf("TotalCount = %d, want 0", result.TotalCount)
			}
			if result.CurrentPage != 1 || result.TotalPages != 1 {
				t.Errorf("pages = %d/%d, want 1/1", result.CurrentPage, result.TotalPages)
			}
			if len(result.Companies) != 0 {
				t.Errorf("len(Companies) = %d, want 0", len(result.Companies))
			}
		})
	}
}
