package drive

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

type googleDrive struct {
	oauth *oauth2.Config
}

func newGoogleDrive(cfg Config) *googleDrive {
	return &googleDrive{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.FrontendBaseURL + "/googledrive/permission/",
			Scopes:       []string{"https://www.googleapis.com/auth/drive"},
			Endpoint:     endpoints.Google,
		},
	}
}

func (d *googleDrive) AuthURL() string {
	return d.oauth.AuthCodeURL("", oauth2.AccessTypeOffline)
}

func (d *googleDrive) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("google drive code exchange: %w", err)
	}
	return marshalToken(tok)
}

func marshalToken(tok *oauth2.Token) (string, error) {
	blob, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("serialize provider token: %w", err)
	}
	return string(blob), nil
}
