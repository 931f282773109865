package handler

import (
	"net/http"

	"docchat/internal/api/response"
	"docchat/internal/vectorstore"
)

type healthResponse struct {
	Status      string            `json:"status"`
	VectorStore vectorStoreHealth `json:"vectorStore"`
	Fallback    fallbackHealth    `json:"fallback"`
}

type vectorStoreHealth struct {
	Available   bool   `json:"available"`
	VectorCount int64  `json:"vectorCount"`
	Dimension   int    `json:"dimension"`
	Detail      string `json:"detail,omitempty"`
}

type fallbackHealth struct {
	Available bool `json:"available"`
}

// HealthCheck reports vector store availability; the process is healthy
// even with the vector tier down because the fallback tier always serves.
func HealthCheck(store vectorstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := store.Health(r.Context())

		response.OK(w, healthResponse{
			Status: "ok",
			VectorStore: vectorStoreHealth{
				Available:   h.Available,
				VectorCount: h.VectorCount,
				Dimension:   h.Dimension,
				Detail:      h.Detail,
			},
			Fallback: fallbackHealth{Available: true},
		})
	}
}
