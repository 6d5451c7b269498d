package models

// HealthMessage is the fixed body of the root endpoint.
const HealthMessage = "PhoBERT Semantic Similarity Service is running."

// SimilarityRequest uses pointers so a missing field can be told apart from
// an empty sentence.
type SimilarityRequest struct {
	Sentence1 *string `json:"sentence1"`
	Sentence2 *string `json:"sentence2"`
}

type SimilarityResponse struct {
	Similarity float64 `json:"similarity"`
}

type BatchSimilarityRequest struct {
	Sentence   *string   `json:"sentence"`
	Candidates []*string `json:"candidates"`
}

type BatchSimilarityResponse struct {
	Similarities []float64 `json:"similarities"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
