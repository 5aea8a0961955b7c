package domain

import "time"

// RankChange describes how a keyword's position moved relative to the
// previous snapshot.
type RankChange string

const (
	// RankUp means the keyword climbed.
	RankUp RankChange = "up"
	// RankDown means the keyword fell.
	RankDown RankChange = "down"
	// RankNew means the keyword was absent from the previous snapshot.
	RankNew RankChange = "new"
	// RankSame means the keyword held its position.
	RankSame RankChange = "same"
)

// RankItem is one entry of the popular-search ranking. It is derived per
// request by diffing the live ordering against the last snapshot.
type RankItem struct {
	Rank         int        `json:"rank"`
	Keyword      string     `json:"keyword"`
	Change       RankChange `json:"change"`
	ChangeAmount int        `json:"changeAmount,omitempty"`
}

// RankingResponse is the top-N popular-search response.
type RankingResponse struct {
	Success   bool       `json:"success"`
	Rankings  []RankItem `json:"rankings"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Error     string     `json:"error,omitempty"`
}

// RecordResponse acknowledges a recorded search keyword.
type RecordResponse struct {
	Success bool   `json:"success"`
	Keyword string `json:"keyword,omitempty"`
	Error   string `json:"error,omitempty"`
}
