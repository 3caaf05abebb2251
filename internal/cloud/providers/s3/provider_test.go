package s3

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/models"
)

const listRootXML = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>drive</Name>
  <Prefix></Prefix>
  <KeyCount>3</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <Delimiter>/</Delimiter>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>report.pdf</Key>
    <LastModified>2023-11-10T12:30:00.000Z</LastModified>
    <ETag>"abc"</ETag>
    <Size>2516582</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <Contents>
    <Key>theme.mp3</Key>
    <LastModified>2023-11-01T08:00:00.000Z</LastModified>
    <ETag>"def"</ETag>
    <Size>1024</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <CommonPrefixes>
    <Prefix>designs/</Prefix>
  </CommonPrefixes>
</ListBucketResult>`

// fakeS3 answers HeadBucket and ListObjectsV2 for bucket "drive" with path-style addressing.
func fakeS3(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if status != nethttp.StatusOK {
			w.WriteHeader(status)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/drive") {
			w.WriteHeader(nethttp.StatusNotFound)
			return
		}
		switch r.Method {
		case nethttp.MethodHead:
			w.WriteHeader(nethttp.StatusOK)
		case nethttp.MethodGet:
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(listRootXML))
		default:
			w.WriteHeader(nethttp.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, endpoint string) *Provider {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")
	p, err := NewProvider(Config{Region: "us-east-1", Bucket: "drive", Endpoint: endpoint})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestNewProvider_RequiresBucket(t *testing.T) {
	if _, err := NewProvider(Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestAuthenticate_MissingSecret(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:1")
	_, err := p.Authenticate(context.Background(), models.Credentials{ClientID: "AKIA"})
	if !cloud.IsAuthError(err) {
		t.Errorf("expected *AuthError, got %v", err)
	}
}

func TestListFolder_BeforeAuthenticate(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:1")
	_, err := p.ListFolder(context.Background(), "root")
	if err == nil {
		t.Fatal("expected error before Authenticate")
	}
	if _, ok := err.(*cloud.StorageError); !ok {
		t.Errorf("expected *StorageError, got %T", err)
	}
}

func TestAuthenticateAndList(t *testing.T) {
	srv := fakeS3(t, nethttp.StatusOK)
	p := newTestProvider(t, srv.URL)
	ctx := context.Background()

	user, err := p.Authenticate(ctx, models.Credentials{ClientID: "AKIAEXAMPLE", APIKey: "secret"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.DisplayName != "AKIAEXAMPLE" || user.Email != "s3://drive" {
		t.Errorf("unexpected identity %+v", user)
	}

	entries, err := p.ListFolder(ctx, "root")
	if err != nil {
		t.Fatalf("ListFolder: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if !entries[0].IsFolder() || entries[0].ID != "designs/" || entries[0].Name != "designs" {
		t.Errorf("first entry should be the designs folder, got %+v", entries[0])
	}
	if entries[1].Name != "report.pdf" || entries[1].MimeType != "application/pdf" {
		t.Errorf("unexpected report entry %+v", entries[1])
	}
	if entries[1].SizeLabel != "2.40 MB" {
		t.Errorf("size label = %s, want 2.40 MB", entries[1].SizeLabel)
	}
	if entries[1].ModifiedDate() != "2023-11-10" {
		t.Errorf("modified = %s, want 2023-11-10", entries[1].ModifiedDate())
	}
}

func TestAuthenticate_Forbidden(t *testing.T) {
	srv := fakeS3(t, nethttp.StatusForbidden)
	p := newTestProvider(t, srv.URL)

	_, err := p.Authenticate(context.Background(), models.Credentials{ClientID: "AKIA", APIKey: "wrong"})
	if !cloud.IsAuthError(err) {
		t.Errorf("expected *AuthError for 403, got %v", err)
	}
}
