package drive_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/drive"
)

func testFactory() *drive.Factory {
	return drive.NewFactory(drive.Config{
		FrontendBaseURL:      "https://app.masterdrive.test",
		GoogleClientID:       "google-client",
		GoogleClientSecret:   "google-secret",
		DropboxClientID:      "dropbox-client",
		OneDriveClientID:     "onedrive-client",
		OneDriveClientSecret: "onedrive-secret",
	})
}

func TestFactory_KnownProviders(t *testing.T) {
	f := testFactory()
	for _, pt := range []domain.ProviderType{
		domain.ProviderGoogleDrive,
		domain.ProviderDropbox,
		domain.ProviderOneDrive,
	} {
		if _, err := f.For(pt); err != nil {
			t.Errorf("For(%s): %v", pt, err)
		}
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := testFactory().For("FTP")
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("err = %v, want ErrInvalidProvider", err)
	}
}

func TestGoogleAuthURL(t *testing.T) {
	d, err := testFactory().For(domain.ProviderGoogleDrive)
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(d.AuthURL())
	if err != nil {
		t.Fatalf("AuthURL is not a URL: %v", err)
	}
	q := u.Query()
	if got := q.Get("client_id"); got != "google-client" {
		t.Errorf("client_id = %q", got)
	}
	if got := q.Get("redirect_uri"); got != "https://app.masterdrive.test/googledrive/permission/" {
		t.Errorf("redirect_uri = %q", got)
	}
	if got := q.Get("scope"); !strings.Contains(got, "auth/drive") {
		t.Errorf("scope = %q, want the drive scope", got)
	}
	// offline access is what makes the stored credential refreshable
	if got := q.Get("access_type"); got != "offline" {
		t.Errorf("access_type = %q, want offline", got)
	}
}

func TestDropboxAuthURL(t *testing.T) {
	d, err := testFactory().For(domain.ProviderDropbox)
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(d.AuthURL())
	if err != nil {
		t.Fatalf("AuthURL is not a URL: %v", err)
	}
	if got := u.Query().Get("client_id"); got != "dropbox-client" {
		t.Errorf("client_id = %q", got)
	}
	if got := u.Query().Get("redirect_uri"); got != "https://app.masterdrive.test/dropbox/permission" {
		t.Errorf("redirect_uri = %q", got)
	}
	if !strings.Contains(u.Host, "dropbox") {
		t.Errorf("host = %q, want the dropbox endpoint", u.Host)
	}
}

func TestOneDriveAuthURL(t *testing.T) {
	d, err := testFactory().For(domain.ProviderOneDrive)
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(d.AuthURL())
	if err != nil {
		t.Fatalf("AuthURL is not a URL: %v", err)
	}
	if got := u.Query().Get("client_id"); got != "onedrive-client" {
		t.Errorf("client_id = %q", got)
	}
	if got := u.Query().Get("redirect_uri"); got != "https://app.masterdrive.test/onedrive/permission" {
		t.Errorf("redirect_uri = %q", got)
	}
}
