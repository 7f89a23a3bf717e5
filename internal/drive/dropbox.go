package drive

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

type dropbox struct {
	oauth *oauth2.Config
}

func newDropbox(cfg Config) *dropbox {
	return &dropbox{
		oauth: &oauth2.Config{
			ClientID:    cfg.DropboxClientID,
			RedirectURL: cfg.FrontendBaseURL + "/dropbox/permission",
			Endpoint:    endpoints.Dropbox,
		},
	}
}

func (d *dropbox) AuthURL() string {
	return d.oauth.AuthCodeURL("")
}

func (d *dropbox) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("dropbox code exchange: %w", err)
	}
	return marshalToken(tok)
}
