package metadata

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// FilePath is the virtual (dir, name, ext) identity of a file within a version.
type FilePath struct {
	Dir  string
	Name string
	Ext  string
}

// ParseFilePath splits path parts into a FilePath. All parts but the last
// form the directory; the last part is split at its final dot. A leading dot
// alone does not start an extension, so ".env" is a name.
func ParseFilePath(parts []string) (FilePath, error) {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(p, "/") {
			switch seg {
			case "", ".":
				continue
			case "..":
				return FilePath{}, fmt.Errorf("%w: path traversal in %q", ErrInvalidInput, strings.Join(parts, "/"))
			}
			clean = append(clean, seg)
		}
	}
	if len(clean) == 0 {
		return FilePath{}, fmt.Errorf("%w: empty file path", ErrInvalidInput)
	}

	base := clean[len(clean)-1]
	ext := path.Ext(base)
	if ext == base {
		ext = ""
	}
	return FilePath{
		Dir:  strings.Join(clean[:len(clean)-1], "/"),
		Name: strings.TrimSuffix(base, ext),
		Ext:  ext,
	}, nil
}

// ParsePathString splits a slash-separated path into a FilePath.
func ParsePathString(p string) (FilePath, error) {
	return ParseFilePath([]string{p})
}

// FullPath returns "dir/name+ext", or "name+ext" at the version root.
func (p FilePath) FullPath() string {
	if p.Dir == "" {
		return p.Name + p.Ext
	}
	return p.Dir + "/" + p.Name + p.Ext
}

func (p FilePath) String() string { return p.FullPath() }

// FormatSize renders a byte count as kilobytes with two decimals.
// The unit is always KB regardless of magnitude.
func FormatSize(size int64) string {
	return fmt.Sprintf("%.2fKB", float64(size)/1024)
}

// FileURL builds /projects/{slug}/{draft|revN}/files/{fullPath}.
func FileURL(slug string, revision int, published bool, fullPath string) string {
	segment := "draft"
	if published {
		segment = fmt.Sprintf("rev%d", revision)
	}
	return "/projects/" + url.PathEscape(slug) + "/" + segment + "/files/" + escapePath(fullPath)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// Hydrate fills the computed FullPath, SizeFormatted and URL fields.
func (f *FileMetadata) Hydrate(slug string, revision int, published bool) {
	f.FullPath = FilePath{Dir: f.Dir, Name: f.Name, Ext: f.Ext}.FullPath()
	f.SizeFormatted = FormatSize(f.SizeOfContent)
	f.URL = FileURL(slug, revision, published, f.FullPath)
}
