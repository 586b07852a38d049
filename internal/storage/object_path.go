package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if trimmed == "" {
		return "bin"
	}
	if cleaned := sanitizePathSegment(trimmed); cleaned != "" {
		return cleaned
	}
	return "bin"
}

// buildObjectPath lays files out as <category>/<yyyy>/<mm>/<dd>/<base>.<ext>.
func buildObjectPath(category, baseName, ext string) string {
	now := time.Now().UTC()
	category = sanitizePathSegment(category)
	if category == "" {
		category = "misc"
	}
	base := sanitizeFileBase(baseName)
	if base == "" {
		base = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	filename := fmt.Sprintf("%s.%s", base, normalizeExtension(ext))
	return path.Join(category, datedir, filename)
}

func detectContentType(ext string) string {
	typeName := mime.TypeByExtension("." + normalizeExtension(ext))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	sanitized := sanitizePathSegment(replaced)
	return strings.Trim(sanitized, "-_")
}

// cleanKey rejects keys that are empty or try to escape the storage root.
func cleanKey(key string) (string, bool) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", false
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(trimmed, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	return cleaned, true
}
