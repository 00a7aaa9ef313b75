package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
)

// BadgerStore persists blobs in an embedded Badger database under keys of
// the form "container/key".
type BadgerStore struct {
	db      *badger.DB
	baseURL string
	logger  log.Logger
}

// BadgerOptions configures OpenBadgerStore.
type BadgerOptions struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the database in memory only.
	InMemory bool

	// BaseURL roots the URLs returned by Put.
	BaseURL string
}

// OpenBadgerStore opens (or creates) the database described by opts.
func OpenBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	logger := log.GetLoggerWithName("storage.badger")

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithLogger(badgerLogger{logger})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger store at %q", opts.Dir)
	}
	return &BadgerStore{db: db, baseURL: opts.BaseURL, logger: logger}, nil
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, container, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewStorageError("put", container, key, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(memoryKey(container, key)), data)
	})
	if err != nil {
		return "", errors.NewStorageError("put", container, key, err)
	}
	return BlobURL(s.baseURL, container, key), nil
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, container, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStorageError("get", container, key, err)
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(memoryKey(container, key)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.NewStorageError("get", container, key, errors.ErrBlobNotFound)
	}
	if err != nil {
		return nil, errors.NewStorageError("get", container, key, err)
	}
	return data, nil
}

// Exists implements Store.
func (s *BadgerStore) Exists(ctx context.Context, container, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewStorageError("exists", container, key, err)
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(memoryKey(container, key)))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStorageError("exists", container, key, err)
	}
	return true, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes Badger's own logging through pkg/log.
type badgerLogger struct {
	l log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
