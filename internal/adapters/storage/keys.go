package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds the storage key for an uploaded file:
// <owner-type>/<owner-id>/<uuid>-<sanitized-filename>.
func ObjectKey(ownerType string, ownerID uint, fileName string) string {
	return path.Join(
		strings.ToLower(ownerType),
		fmt.Sprintf("%d", ownerID),
		uuid.New().String()+"-"+sanitizeFileName(fileName),
	)
}

func sanitizeFileName(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
