package domain

// Document is a unit of source text handed to the pipeline for ingestion.
// Identity is the caller-supplied ID; re-ingesting an existing ID appends
// new chunks alongside the old ones.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	Text      string `json:"text"`
}

// Chunk is a contiguous window of a document's text, the unit of retrieval.
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	SourceURL  string `json:"source_url"`
	Text       string `json:"text"`
	Position   int    `json:"position"`
}

// RetrievedPassage pairs a chunk with its score for one query.
// Score semantics follow the index metric: higher is better for
// inner product, lower is better for L2.
type RetrievedPassage struct {
	Chunk Chunk
	Score float32
}

// Source identifies where a cited passage came from.
type Source struct {
	Title     string  `json:"title"`
	SourceURL string  `json:"source_url"`
	Score     float32 `json:"score"`
}

// QueryResult is the response produced by one Answer call.
// Sources appear in retrieval order; duplicates by URL are kept.
type QueryResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}
