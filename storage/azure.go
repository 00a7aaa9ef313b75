package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
)

// AzureStore keeps blobs in a single Azure Blob Storage container. Logical
// containers become blob name prefixes: ("charts", "cv_plot2.png") is stored
// as "charts/cv_plot2.png".
type AzureStore struct {
	client    *azblob.Client
	container string
	logger    log.Logger
}

// OpenAzureStore connects with a storage account connection string and
// creates the account container if it does not exist. Failed requests are
// not retried.
func OpenAzureStore(ctx context.Context, connectionString, container string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: -1},
			Telemetry: policy.TelemetryOptions{ApplicationID: "tsreg"},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create azure blob client")
	}

	s := &AzureStore{
		client:    client,
		container: container,
		logger: log.GetLoggerWithName("storage.azure").With(
			log.ContainerKey, container,
		),
	}

	_, err = client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, errors.Wrapf(err, "create azure container %q", container)
	}
	return s, nil
}

func (s *AzureStore) blobName(container, key string) string {
	return path.Join(container, key)
}

// Put implements Store. The returned URL is the blob URL, which carries the
// SAS token when the connection string used one.
func (s *AzureStore) Put(ctx context.Context, container, key string, data []byte) (string, error) {
	name := s.blobName(container, key)
	contentType := ContentType(key)
	_, err := s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", errors.NewStorageError("put", container, key, err)
	}

	u := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name).URL()
	s.logger.Debug("Blob uploaded", log.BlobKey, name, log.URLKey, u)
	return u, nil
}

// Get implements Store.
func (s *AzureStore) Get(ctx context.Context, container, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.blobName(container, key), nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, errors.NewStorageError("get", container, key, errors.ErrBlobNotFound)
	}
	if err != nil {
		return nil, errors.NewStorageError("get", container, key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, errors.NewStorageError("get", container, key, err)
	}
	return buf.Bytes(), nil
}

// Exists implements Store.
func (s *AzureStore) Exists(ctx context.Context, container, key string) (bool, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(s.blobName(container, key))
	_, err := blobClient.GetProperties(ctx, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStorageError("exists", container, key, err)
	}
	return true, nil
}

// Close implements Store.
func (s *AzureStore) Close() error { return nil }
