package storage

import (
	"context"
	"fmt"

	"github.com/ezoic/tsreg/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendAzure  = "azure"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string

	// BaseURL roots blob URLs for the memory and badger backends.
	BaseURL string

	BadgerDir string

	AzureConnectionString string
	AzureContainer        string
}

// Open creates the Store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(opts.BaseURL), nil
	case BackendBadger:
		return OpenBadgerStore(BadgerOptions{Dir: opts.BadgerDir, BaseURL: opts.BaseURL})
	case BackendAzure:
		return OpenAzureStore(ctx, opts.AzureConnectionString, opts.AzureContainer)
	default:
		return nil, errors.NewValueError("storage.Open", fmt.Sprintf("unknown backend %q", opts.Backend))
	}
}
