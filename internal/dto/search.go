package dto

type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type SearchDocument struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
}

type SearchResult struct {
	Chunk    ChunkResponse  `json:"chunk"`
	Document SearchDocument `json:"document"`
	Score    float64        `json:"score"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

type AskRequest struct {
	Query string `json:"query"`
}

type AskResponse struct {
	Query  string `json:"query"`
	Found  bool   `json:"found"`
	Answer string `json:"answer,omitempty"`
}
