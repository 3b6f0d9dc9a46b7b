package domain

// DocumentChunk is one embedded slice of a source document. Chunks are
// produced by the ingestion pipeline and are read-only at query time.
type DocumentChunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"vector,omitempty"`
	Position   int       `json:"position"`
}

// RetrievalResult pairs a chunk with its cosine similarity to the query.
// Sequences of these are transient and ordered descending by similarity.
type RetrievalResult struct {
	Chunk      DocumentChunk `json:"chunk"`
	Similarity float64       `json:"similarity"`
}

// TrainingExample is one labeled query used to fit the ML tier.
type TrainingExample struct {
	Text  string      `json:"text"  yaml:"text"`
	Label IntentLabel `json:"label" yaml:"label"`
}

// ContactRecord is a structured-directory entry (canteens, faculty,
// wardens and the like).
type ContactRecord struct {
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// LocationRecord is a structured-directory entry for campus places.
type LocationRecord struct {
	Name        string `json:"name"`
	Building    string `json:"building,omitempty"`
	Floor       string `json:"floor,omitempty"`
	Description string `json:"description,omitempty"`
}

// ChatReply is the composed answer returned to the routing layer.
type ChatReply struct {
	Answer         string               `json:"answer"`
	Classification ClassificationResult `json:"classification"`
	Sources        []RetrievalResult    `json:"sources,omitempty"`
	Contacts       []ContactRecord      `json:"contacts,omitempty"`
	Locations      []LocationRecord     `json:"locations,omitempty"`
	UsedFallback   bool                 `json:"used_fallback"`
}
