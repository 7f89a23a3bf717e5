// Package drive holds the adapters for the supported cloud-storage
// providers. Each provider exposes the same two capabilities: produce an
// authorization URL and exchange an authorization code for a credential blob.
package drive

import (
	"context"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

type Drive interface {
	AuthURL() string

	// Exchange trades an authorization code for a serialized provider
	// credential, opaque to every other component.
	Exchange(ctx context.Context, code string) (string, error)
}

// Factory selects the adapter for an enumerated provider type.
type Factory struct {
	drives map[domain.ProviderType]Drive
}

type Config struct {
	FrontendBaseURL string

	GoogleClientID     string
	GoogleClientSecret string

	DropboxClientID string

	OneDriveClientID     string
	OneDriveClientSecret string
}

func NewFactory(cfg Config) *Factory {
	return &Factory{
		drives: map[domain.ProviderType]Drive{
			domain.ProviderGoogleDrive: newGoogleDrive(cfg),
			domain.ProviderDropbox:     newDropbox(cfg),
			domain.ProviderOneDrive:    newOneDrive(cfg),
		},
	}
}

// For returns the adapter for the given type, or domain.ErrInvalidProvider
// for anything outside the enumerated set.
func (f *Factory) For(t domain.ProviderType) (Drive, error) {
	d, ok := f.drives[t]
	if !ok {
		return nil, domain.ErrInvalidProvider
	}
	return d, nil
}
