package metadata

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// MaxSearchLength truncates free-text search terms, counted in characters.
const MaxSearchLength = 50

// ProjectQuery filters and pages GetProjectSummaries.
type ProjectQuery struct {
	PageStart  int
	PageLength int // 0 means unbounded

	Badge    string
	Category string
	OwnerID  string
	Search   string

	// Draft lists each project's draft instead of its latest published
	// revision. Projects that were never published only appear in draft listings.
	Draft bool
}

// ProjectSummary is the listing read model.
type ProjectSummary struct {
	Slug        string
	Name        string
	Description string
	Git         *string
	OwnerID     *string
	Badges      []string
	Categories  []string
	IconMap     map[string]FileMetadata
	Hidden      bool
	Installs    int64
	Revision    int
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SummaryCandidate is one project joined to its selected version, as fetched
// by an engine before filtering.
type SummaryCandidate struct {
	Project     Project
	Revision    int
	PublishedAt *time.Time
	AppMetadata AppMetadata
	Installs    int64
}

// BuildProjectSummaries filters, orders and pages candidates into summaries.
// Ordering is most recently updated first, ties broken by slug.
func BuildProjectSummaries(candidates []SummaryCandidate, q ProjectQuery) []ProjectSummary {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	if r := []rune(search); len(r) > MaxSearchLength {
		search = string(r[:MaxSearchLength])
	}

	matched := make([]SummaryCandidate, 0, len(candidates))
	for _, c := range candidates {
		md := c.AppMetadata
		if md.Hidden && q.OwnerID == "" {
			continue
		}
		if q.OwnerID != "" && (c.Project.OwnerID == nil || *c.Project.OwnerID != q.OwnerID) {
			continue
		}
		if q.Badge != "" && !slices.Contains(md.Badges, q.Badge) {
			continue
		}
		if q.Category != "" && !slices.Contains(md.Categories, q.Category) {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		matched = append(matched, c)
	}

	slices.SortStableFunc(matched, func(a, b SummaryCandidate) int {
		if c := b.Project.UpdatedAt.Compare(a.Project.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Project.Slug, b.Project.Slug)
	})

	start := min(max(q.PageStart, 0), len(matched))
	end := len(matched)
	if q.PageLength > 0 {
		end = min(start+q.PageLength, end)
	}

	out := make([]ProjectSummary, 0, end-start)
	for _, c := range matched[start:end] {
		out = append(out, summaryFromCandidate(c))
	}
	return out
}

func matchesSearch(c SummaryCandidate, search string) bool {
	return strings.Contains(strings.ToLower(c.Project.Slug), search) ||
		strings.Contains(strings.ToLower(c.AppMetadata.Name), search) ||
		strings.Contains(strings.ToLower(c.AppMetadata.Description), search)
}

func summaryFromCandidate(c SummaryCandidate) ProjectSummary {
	md := c.AppMetadata
	published := c.PublishedAt != nil

	var icons map[string]FileMetadata
	if len(md.IconMap) > 0 {
		icons = make(map[string]FileMetadata, len(md.IconMap))
		for size, p := range md.IconMap {
			fp, err := ParsePathString(p)
			if err != nil {
				continue
			}
			f := FileMetadata{Dir: fp.Dir, Name: fp.Name, Ext: fp.Ext}
			f.Hydrate(c.Project.Slug, c.Revision, published)
			icons[size] = f
		}
	}

	return ProjectSummary{
		Slug:        c.Project.Slug,
		Name:        md.DisplayName(c.Project.Slug),
		Description: md.Description,
		Git:         c.Project.Git,
		OwnerID:     c.Project.OwnerID,
		Badges:      slices.Clone(md.Badges),
		Categories:  slices.Clone(md.Categories),
		IconMap:     icons,
		Hidden:      md.Hidden,
		Installs:    c.Installs,
		Revision:    c.Revision,
		PublishedAt: c.PublishedAt,
		CreatedAt:   c.Project.CreatedAt,
		UpdatedAt:   c.Project.UpdatedAt,
	}
}
