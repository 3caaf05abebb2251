package registry

import (
	"strings"

	"github.com/orbit-drive/orbit/internal/models"
)

// kindRules is checked in order; the first substring match wins.
var kindRules = []struct {
	substr string
	kind   models.FileKind
}{
	{"folder", models.KindFolder},
	{"image", models.KindImage},
	{"pdf", models.KindPDF},
	{"audio", models.KindAudio},
	{"video", models.KindVideo},
}

// Classify maps a MIME-like type string to a FileKind. Matching is
// case-sensitive: "IMAGE/PNG" is a document.
// "x-custom-folder-image" is a folder, not an image.
func Classify(typeString string) models.FileKind {
	for _, rule := range kindRules {
		if strings.Contains(typeString, rule.substr) {
			return rule.kind
		}
	}
	return models.KindDocument
}
