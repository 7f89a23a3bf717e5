package drive

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

type oneDrive struct {
	oauth *oauth2.Config
}

func newOneDrive(cfg Config) *oneDrive {
	return &oneDrive{
		oauth: &oauth2.Config{
			ClientID:     cfg.OneDriveClientID,
			ClientSecret: cfg.OneDriveClientSecret,
			RedirectURL:  cfg.FrontendBaseURL + "/onedrive/permission",
			Scopes:       []string{"onedrive.readwrite", "offline_access"},
			Endpoint:     endpoints.Microsoft,
		},
	}
}

func (d *oneDrive) AuthURL() string {
	return d.oauth.AuthCodeURL("")
}

func (d *oneDrive) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("onedrive code exchange: %w", err)
	}
	return marshalToken(tok)
}
