// Package storage is the object-store contract used by the pipeline, with
// in-memory, Badger and Azure Blob Storage backends.
//
// Blobs are addressed by a logical container and a key. Every Put returns a
// URL that a client can use to fetch the blob (charts are handed to callers
// this way).
package storage

import (
	"context"
	"net/url"
	"strings"
)

// Default logical containers.
const (
	ContainerData   = "data"
	ContainerModels = "models"
	ContainerCharts = "charts"
)

// Fixed blob keys.
const (
	KeyTrainX       = "X.bin"
	KeyTrainY       = "y.bin"
	KeyEvalX        = "X_avaliacao.bin"
	KeyEvalY        = "y_avaliacao.bin"
	KeyPredictX     = "X_previsao.bin"
	KeyModel        = "modelo_final.pkl"
	KeyCVChart      = "cv_plot2.png"
	KeyEvalChart    = "avaliacao_plot.png"
	KeyPredictChart = "prever_plot.png"
)

// Store persists opaque blobs. Implementations must be safe for concurrent use.
type Store interface {
	// Put writes data, replacing any existing blob, and returns its URL.
	Put(ctx context.Context, container, key string, data []byte) (string, error)

	// Get returns the blob. A missing blob yields a *errors.StorageError
	// wrapping errors.ErrBlobNotFound.
	Get(ctx context.Context, container, key string) ([]byte, error)

	// Exists reports whether the blob is present.
	Exists(ctx context.Context, container, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// BlobURL is the URL served by the HTTP layer for backends that have no
// public endpoint of their own.
func BlobURL(baseURL, container, key string) string {
	return strings.TrimRight(baseURL, "/") + "/blobs/" + url.PathEscape(container) + "/" + url.PathEscape(key)
}

// ContentType guesses the MIME type of a blob from its key.
func ContentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
