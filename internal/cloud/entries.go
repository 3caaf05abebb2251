package cloud

import (
	"mime"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/models"
)

// FolderPrefix maps a folder id to the object key prefix that lists it.
// Folder ids of prefix-based stores are the prefixes themselves.
func FolderPrefix(folderID string) string {
	if folderID == "" || folderID == constants.RootFolderID {
		return ""
	}
	if !strings.HasSuffix(folderID, "/") {
		return folderID + "/"
	}
	return folderID
}

// FolderEntry builds the entry for a "/"-delimited prefix.
func FolderEntry(prefix string) models.FileEntry {
	name := path.Base(strings.TrimSuffix(prefix, "/"))
	return models.FileEntry{
		ID:        prefix,
		Name:      name,
		MimeType:  models.FolderMimeType,
		Kind:      models.KindFolder,
		SizeLabel: "-",
	}
}

// ObjectEntry builds the entry for a stored object. An empty contentType is
// guessed from the key's extension.
func ObjectEntry(key string, size int64, modified time.Time, contentType string) models.FileEntry {
	if contentType == "" {
		contentType = TypeByName(key)
	}
	var bytes uint64
	if size > 0 {
		bytes = uint64(size)
	}
	return models.FileEntry{
		ID:        key,
		Name:      path.Base(key),
		MimeType:  contentType,
		SizeBytes: models.Uint64Ptr(bytes),
		SizeLabel: models.FormatMegabytes(bytes),
		Modified:  models.DateOnly(modified),
	}
}

// TypeByName guesses a MIME type from a file name's extension.
func TypeByName(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
		return t
	}
	return constants.FallbackMimeType
}

// ContentType picks the type to store an upload with: the declared type,
// then the sniffed content of LocalPath, then the generic binary type.
func ContentType(desc models.FileDescriptor) string {
	if desc.DeclaredType != "" {
		return desc.DeclaredType
	}
	if desc.LocalPath != "" {
		if m, err := mimetype.DetectFile(desc.LocalPath); err == nil {
			return m.String()
		}
	}
	return constants.FallbackMimeType
}

// ObjectKey joins a folder id and a file name into an object key.
func ObjectKey(folderID, name string) string {
	return FolderPrefix(folderID) + name
}
