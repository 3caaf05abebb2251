package cloud

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/orbit-drive/orbit/internal/models"
)

func TestUnavailable(t *testing.T) {
	var s RemoteStorage = Unavailable{}

	if _, err := s.Authenticate(context.Background(), models.Credentials{ClientID: "x"}); !errors.Is(err, ErrLiveConnectionUnavailable) {
		t.Errorf("Authenticate = %v, want ErrLiveConnectionUnavailable", err)
	}
	if _, err := s.ListFolder(context.Background(), "root"); !errors.Is(err, ErrLiveConnectionUnavailable) {
		t.Errorf("ListFolder = %v, want ErrLiveConnectionUnavailable", err)
	}
	if _, ok := s.(Uploader); ok {
		t.Error("Unavailable should not accept uploads")
	}
	if ProviderName(s) != "unavailable" {
		t.Errorf("ProviderName = %s", ProviderName(s))
	}
}

func TestWrapError(t *testing.T) {
	if WrapError("s3", "list", "", nil) != nil {
		t.Error("nil error should stay nil")
	}

	authErr := WrapError("s3", "probe", "drive", errors.New("api error SignatureDoesNotMatch"))
	if !IsAuthError(authErr) {
		t.Errorf("expected *AuthError, got %T", authErr)
	}

	netErr := WrapError("azure", "list", "docs/", errors.New("dial tcp: i/o timeout"))
	var storageErr *StorageError
	if !errors.As(netErr, &storageErr) {
		t.Fatalf("expected *StorageError, got %T", netErr)
	}
	if !storageErr.Temporary() {
		t.Error("timeout should be temporary")
	}
	if storageErr.Error() != "azure: list docs/: dial tcp: i/o timeout" {
		t.Errorf("Error() = %q", storageErr.Error())
	}

	// Already typed errors pass through.
	again := WrapError("s3", "list", "", fmt.Errorf("retry: %w", authErr))
	if !IsAuthError(again) {
		t.Error("wrapped *AuthError should be preserved")
	}
}

func TestFolderPrefixAndKeys(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"root":     "",
		"designs":  "designs/",
		"designs/": "designs/",
		"a/b/":     "a/b/",
	}
	for in, want := range tests {
		if got := FolderPrefix(in); got != want {
			t.Errorf("FolderPrefix(%q) = %q, want %q", in, got, want)
		}
	}

	if got := ObjectKey("root", "report.pdf"); got != "report.pdf" {
		t.Errorf("ObjectKey(root) = %q", got)
	}
	if got := ObjectKey("designs/", "logo.png"); got != "designs/logo.png" {
		t.Errorf("ObjectKey(designs/) = %q", got)
	}
}

func TestEntries(t *testing.T) {
	folder := FolderEntry("designs/logos/")
	if !folder.IsFolder() || folder.Name != "logos" || folder.ID != "designs/logos/" {
		t.Errorf("unexpected folder entry %+v", folder)
	}

	obj := ObjectEntry("designs/logo.png", 2516582, testTime, "")
	if obj.Name != "logo.png" || obj.MimeType != "image/png" || obj.SizeLabel != "2.40 MB" {
		t.Errorf("unexpected object entry %+v", obj)
	}
	if obj.SizeBytes == nil || *obj.SizeBytes != 2516582 {
		t.Errorf("size bytes = %v", obj.SizeBytes)
	}

	if got := TypeByName("archive.unknownext"); got != "application/octet-stream" {
		t.Errorf("TypeByName fallback = %s", got)
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType(models.FileDescriptor{Name: "a.bin", DeclaredType: "image/png"}); got != "image/png" {
		t.Errorf("declared type ignored: %s", got)
	}
	if got := ContentType(models.FileDescriptor{Name: "a.bin"}); got != "application/octet-stream" {
		t.Errorf("fallback = %s", got)
	}
}
