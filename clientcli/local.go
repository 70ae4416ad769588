package clientcli

import (
	"context"
	"fmt"

	"github.com/sagarc03/s3manager"
)

// LocalBackend runs bucket operations in-process with a cached configuration,
// for use while the server's configuration store is unavailable.
type LocalBackend struct {
	cfg     s3manager.UserConfig
	gateway *s3manager.ObjectGateway
	broker  *s3manager.UploadBroker
}

// NewLocalBackend creates a LocalBackend that opens buckets with open.
func NewLocalBackend(cached CachedConfig, open s3manager.Opener) (*LocalBackend, error) {
	gateway, err := s3manager.NewObjectGateway(open, s3manager.GatewayConfig{})
	if err != nil {
		return nil, fmt.Errorf("new local backend: %w", err)
	}

	broker, err := s3manager.NewUploadBroker(open, s3manager.BrokerConfig{})
	if err != nil {
		return nil, fmt.Errorf("new local backend: %w", err)
	}

	return &LocalBackend{
		cfg:     cached.UserConfig(),
		gateway: gateway,
		broker:  broker,
	}, nil
}

func (b *LocalBackend) List(ctx context.Context, prefix string) ([]s3manager.StorageItem, error) {
	return b.gateway.List(ctx, b.cfg, prefix)
}

func (b *LocalBackend) GetContent(ctx context.Context, key string) (s3manager.ObjectContent, error) {
	return b.gateway.GetContent(ctx, b.cfg, key)
}

func (b *LocalBackend) CreateFolder(ctx context.Context, prefix, name string) (s3manager.FolderResult, error) {
	return b.gateway.CreateFolder(ctx, b.cfg, prefix, name)
}

func (b *LocalBackend) DeleteObject(ctx context.Context, key string) error {
	return b.gateway.DeleteObject(ctx, b.cfg, key)
}

func (b *LocalBackend) PresignUpload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error) {
	return b.broker.PresignUpload(ctx, b.cfg, req)
}

func (b *LocalBackend) PresignDownload(ctx context.Context, req s3manager.PresignRequest) (s3manager.PresignedURL, error) {
	return b.broker.PresignDownload(ctx, b.cfg, req)
}
