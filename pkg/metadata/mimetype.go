package metadata

import (
	"mime"
	"path"
	"strings"
)

const defaultMimeType = "application/octet-stream"

// Types the system tables get wrong or lack for badge app sources.
var mimeOverrides = map[string]string{
	".py":  "text/x-python",
	".ts":  "text/typescript",
	".tsx": "text/typescript-jsx",
	".jsx": "text/javascript-jsx",
}

// DetectMimeType picks the mimetype to store for an upload.
//
// A specific type supplied by the uploader is trusted. Generic ones (empty,
// application/octet-stream, application/octet, application/x-*) are replaced
// by the type derived from the file extension, and the supplied value is only
// used again when the extension is unknown.
func DetectMimeType(filename, provided string) string {
	provided = strings.TrimSpace(provided)
	if provided != "" && !isGenericMimeType(provided) {
		return provided
	}

	ext := strings.ToLower(path.Ext(filename))
	if t, ok := mimeOverrides[ext]; ok {
		return t
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	if provided != "" {
		return provided
	}
	return defaultMimeType
}

func isGenericMimeType(t string) bool {
	t = strings.ToLower(t)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t == "application/octet-stream" ||
		t == "application/octet" ||
		strings.HasPrefix(t, "application/x-")
}
