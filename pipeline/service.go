// Package pipeline implements the train, evaluate and predict stages of the
// service on top of an object store.
//
// Every stage reads its inputs from the store, runs to completion and writes
// its outputs (model blob, chart) back; the Service keeps no model in memory
// between calls. Stages touching the same blobs are serialized within the
// process by a storage.KeyLocker. Separate processes sharing a store still
// race with last-write-wins semantics.
//
//	svc := pipeline.NewService(store, report.NewPNGRenderer(), pipeline.DefaultOptions())
//	rep, err := svc.Train(ctx, tbl, "sales")
//	fmt.Println(rep.ChartURL)
package pipeline

import (
	"context"
	"time"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/linear"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/report"
	"github.com/ezoic/tsreg/sklearn/model_selection"
	"github.com/ezoic/tsreg/storage"
)

// Containers names the logical containers used by the stages.
type Containers struct {
	Data   string
	Models string
	Charts string
}

// Options configures a Service.
type Options struct {
	Containers Containers

	// StorageTimeout bounds every single object-store call.
	StorageTimeout time.Duration

	// NSplits is the number of cross-validation folds used by training.
	NSplits int
}

// DefaultOptions returns the standard containers, a 30s storage timeout and
// five folds.
func DefaultOptions() Options {
	return Options{
		Containers: Containers{
			Data:   storage.ContainerData,
			Models: storage.ContainerModels,
			Charts: storage.ContainerCharts,
		},
		StorageTimeout: 30 * time.Second,
		NSplits:        model_selection.DefaultNSplits,
	}
}

// Service runs pipeline stages against a store.
type Service struct {
	store    storage.Store
	renderer report.Renderer
	opts     Options
	locks    *storage.KeyLocker
	logger   log.Logger
}

// NewService creates a Service. Zero-valued options fall back to DefaultOptions.
func NewService(store storage.Store, renderer report.Renderer, opts Options) *Service {
	def := DefaultOptions()
	if opts.Containers.Data == "" {
		opts.Containers.Data = def.Containers.Data
	}
	if opts.Containers.Models == "" {
		opts.Containers.Models = def.Containers.Models
	}
	if opts.Containers.Charts == "" {
		opts.Containers.Charts = def.Containers.Charts
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = def.StorageTimeout
	}
	if opts.NSplits == 0 {
		opts.NSplits = def.NSplits
	}

	return &Service{
		store:    store,
		renderer: renderer,
		opts:     opts,
		locks:    storage.NewKeyLocker(),
		logger:   log.GetLoggerWithName("pipeline"),
	}
}

// SetLogger replaces the service logger.
func (s *Service) SetLogger(logger log.Logger) {
	s.logger = logger
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

func (s *Service) dataRef(key string) storage.Ref {
	return storage.Ref{Container: s.opts.Containers.Data, Key: key}
}

func (s *Service) modelRef() storage.Ref {
	return storage.Ref{Container: s.opts.Containers.Models, Key: storage.KeyModel}
}

func (s *Service) chartRef(key string) storage.Ref {
	return storage.Ref{Container: s.opts.Containers.Charts, Key: key}
}

func (s *Service) get(ctx context.Context, ref storage.Ref) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StorageTimeout)
	defer cancel()
	return s.store.Get(ctx, ref.Container, ref.Key)
}

func (s *Service) put(ctx context.Context, ref storage.Ref, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StorageTimeout)
	defer cancel()
	url, err := s.store.Put(ctx, ref.Container, ref.Key, data)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Blob written",
		log.ContainerKey, ref.Container,
		log.BlobKey, ref.Key,
		"bytes", len(data),
	)
	return url, nil
}

func (s *Service) exists(ctx context.Context, ref storage.Ref) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StorageTimeout)
	defer cancel()
	return s.store.Exists(ctx, ref.Container, ref.Key)
}

// loadModel returns the persisted model, or nil if none exists.
func (s *Service) loadModel(ctx context.Context) (*linear.LinearRegression, error) {
	ref := s.modelRef()
	ok, err := s.exists(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	blob, err := s.get(ctx, ref)
	if errors.Is(err, errors.ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lr := linear.NewLinearRegression()
	if err := model.Unmarshal(blob, lr); err != nil {
		return nil, errors.NewModelError("Service.loadModel", "persisted model is unreadable", err)
	}
	return lr, nil
}

func (s *Service) saveModel(ctx context.Context, lr *linear.LinearRegression) error {
	blob, err := model.Marshal(lr)
	if err != nil {
		return err
	}
	_, err = s.put(ctx, s.modelRef(), blob)
	return err
}
