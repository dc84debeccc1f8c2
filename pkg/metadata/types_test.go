package metadata

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Revision selectors
// ============================================================================

func TestParseRevisionSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want RevisionSelector
	}{
		{"draft", Draft()},
		{"LATEST", Latest()},
		{"0", Revision(0)},
		{"12", Revision(12)},
		{"rev3", Revision(3)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRevisionSelector(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "-1", "head", "rev"} {
		_, err := ParseRevisionSelector(bad)
		assert.True(t, errors.Is(err, ErrInvalidInput), "input %q", bad)
	}
}

func TestRevisionSelector_Resolve(t *testing.T) {
	t.Parallel()

	latest, draft := IntPtr(2), IntPtr(3)

	rev, ok := Draft().Resolve(latest, draft)
	assert.True(t, ok)
	assert.Equal(t, 3, rev)

	rev, ok = Latest().Resolve(latest, draft)
	assert.True(t, ok)
	assert.Equal(t, 2, rev)

	_, ok = Latest().Resolve(nil, draft)
	assert.False(t, ok)

	rev, ok = Revision(1).Resolve(nil, nil)
	assert.True(t, ok)
	assert.Equal(t, 1, rev)

	assert.Equal(t, "draft", Draft().String())
	assert.Equal(t, "7", Revision(7).String())
}

// ============================================================================
// App metadata
// ============================================================================

func TestAppMetadata_PreservesUnknownFields(t *testing.T) {
	t.Parallel()

	in := `{"name":"Snake","badges":["mch2022"],"future_field":{"a":1},` +
		`"application":[{"executable":"main.py","arch":"esp32"}]}`

	var md AppMetadata
	require.NoError(t, json.Unmarshal([]byte(in), &md))

	assert.Equal(t, "Snake", md.Name)
	assert.Equal(t, []string{"mch2022"}, md.Badges)
	assert.JSONEq(t, `{"a":1}`, string(md.Extra["future_field"]))
	require.Len(t, md.Application, 1)
	assert.Equal(t, "main.py", md.Application[0].Executable)
	assert.JSONEq(t, `"esp32"`, string(md.Application[0].Extra["arch"]))

	md.Description = "eat apples"
	out, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Snake","description":"eat apples","badges":["mch2022"],`+
		`"future_field":{"a":1},"application":[{"executable":"main.py","arch":"esp32"}]}`, string(out))
}

func TestAppMetadata_KnownFieldsWinOverExtra(t *testing.T) {
	t.Parallel()

	md := AppMetadata{Name: "real", Extra: map[string]json.RawMessage{"name": json.RawMessage(`"shadow"`)}}
	out, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"real"}`, string(out))
}

func TestAppMetadata_KeepsExplicitEmptyKnownFields(t *testing.T) {
	t.Parallel()

	in := `{"name":"","hidden":false,"badges":[],"x":1}`
	var md AppMetadata
	require.NoError(t, json.Unmarshal([]byte(in), &md))

	out, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	md.Badges = []string{"mch2022"}
	md.Name = "Snake"
	out, err = json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Snake","hidden":false,"badges":["mch2022"],"x":1}`, string(out))
}

func TestAppMetadata_ClearedFieldIsNotRestored(t *testing.T) {
	t.Parallel()

	var md AppMetadata
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Snake"}`), &md))
	md.Name = ""

	out, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestAppMetadata_CloneIsDeep(t *testing.T) {
	t.Parallel()

	md := AppMetadata{
		Badges:  []string{"a"},
		IconMap: map[string]string{"64x64": "icon.png"},
		Extra:   map[string]json.RawMessage{"x": json.RawMessage(`1`)},
	}
	c := md.Clone()
	c.Badges[0] = "b"
	c.IconMap["64x64"] = "other.png"
	c.Extra["x"][0] = '2'

	assert.Equal(t, "a", md.Badges[0])
	assert.Equal(t, "icon.png", md.IconMap["64x64"])
	assert.Equal(t, "1", string(md.Extra["x"]))
}

// ============================================================================
// Paths
// ============================================================================

func TestParseFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		parts []string
		want  FilePath
		full  string
	}{
		{"root file", []string{"main.py"}, FilePath{Name: "main", Ext: ".py"}, "main.py"},
		{"nested parts", []string{"assets", "img", "icon.png"}, FilePath{Dir: "assets/img", Name: "icon", Ext: ".png"}, "assets/img/icon.png"},
		{"slash separated", []string{"lib/util.tar.gz"}, FilePath{Dir: "lib", Name: "util.tar", Ext: ".gz"}, "lib/util.tar.gz"},
		{"no extension", []string{"README"}, FilePath{Name: "README"}, "README"},
		{"dotfile", []string{".env"}, FilePath{Name: ".env"}, ".env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFilePath(tt.parts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.full, got.FullPath())
		})
	}

	_, err := ParseFilePath([]string{"a", "..", "b"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseFilePath(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFileMetadata_Hydrate(t *testing.T) {
	t.Parallel()

	f := FileMetadata{Dir: "img", Name: "icon", Ext: ".png", SizeOfContent: 2560}

	f.Hydrate("snake", 4, true)
	assert.Equal(t, "img/icon.png", f.FullPath)
	assert.Equal(t, "2.50KB", f.SizeFormatted)
	assert.Equal(t, "/projects/snake/rev4/files/img/icon.png", f.URL)

	f.Hydrate("snake", 5, false)
	assert.Equal(t, "/projects/snake/draft/files/img/icon.png", f.URL)
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.00KB", FormatSize(0))
	assert.Equal(t, "1.00KB", FormatSize(1024))
	assert.Equal(t, "1024.00KB", FormatSize(1<<20))
}

// ============================================================================
// Mimetypes
// ============================================================================

func TestDetectMimeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		provided string
		want     string
	}{
		{"trusts specific type", "main.py", "text/plain", "text/plain"},
		{"overrides python", "main.py", "application/octet-stream", "text/x-python"},
		{"overrides tsx", "App.tsx", "", "text/typescript-jsx"},
		{"x- prefix is generic", "main.ts", "application/x-typescript", "text/typescript"},
		{"extension lookup", "icon.png", "", "image/png"},
		{"unknown extension keeps provided", "blob.zzq", "application/x-custom", "application/x-custom"},
		{"unknown extension default", "blob.zzq", "", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectMimeType(tt.filename, tt.provided))
		})
	}
}

// ============================================================================
// Misc
// ============================================================================

func TestValidateSlug(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"snake", "my_app-2", "_x"} {
		assert.NoError(t, ValidateSlug(ok), ok)
	}
	for _, bad := range []string{"", "-lead", "Upper", "with space", "a/b"} {
		assert.ErrorIs(t, ValidateSlug(bad), ErrInvalidInput, bad)
	}
}

func TestProjectChanges_Allowed(t *testing.T) {
	t.Parallel()

	changes := ProjectChanges{"git": "https://example.com/x.git", "slug": "evil", "unknownField": 1}
	assert.Equal(t, map[string]any{"git": "https://example.com/x.git"}, changes.Allowed())
	assert.Empty(t, ProjectChanges{"nope": true}.Allowed())
}

func TestEventType(t *testing.T) {
	t.Parallel()

	et, err := ParseEventType("launch_count")
	require.NoError(t, err)
	assert.Equal(t, EventLaunch, et)

	_, err = ParseEventType("uninstall_count")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildProjectSummaries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)
	published := now.Add(-time.Hour)
	candidates := []SummaryCandidate{
		{
			Project:     Project{Slug: "demo-app", OwnerID: StringPtr("user-1"), UpdatedAt: now},
			Revision:    3,
			PublishedAt: &published,
			AppMetadata: AppMetadata{
				Name: "Demo App", Badges: []string{"mcore"}, Categories: []string{"game"},
				IconMap: map[string]string{"64x64": "icon-64x64.png"},
			},
			Installs: 42,
		},
		{
			Project:     Project{Slug: "draft-app", OwnerID: StringPtr("user-1"), UpdatedAt: now.Add(-time.Minute)},
			Revision:    7,
			AppMetadata: AppMetadata{Description: "desc", Hidden: true, IconMap: map[string]string{"64x64": "icon.png"}},
		},
		{
			Project:     Project{Slug: "zeta", OwnerID: StringPtr("user-2"), UpdatedAt: now.Add(-2 * time.Minute)},
			Revision:    0,
			PublishedAt: &published,
			AppMetadata: AppMetadata{Name: "Zeta", Description: "A GAME of snakes", Categories: []string{"game"}},
		},
	}

	t.Run("maps read model and hides hidden projects", func(t *testing.T) {
		got := BuildProjectSummaries(candidates, ProjectQuery{})
		require.Len(t, got, 2)
		assert.Equal(t, "demo-app", got[0].Slug)
		assert.Equal(t, "Demo App", got[0].Name)
		assert.Equal(t, int64(42), got[0].Installs)
		assert.Equal(t, "icon-64x64.png", got[0].IconMap["64x64"].FullPath)
		assert.Equal(t, "/projects/demo-app/rev3/files/icon-64x64.png", got[0].IconMap["64x64"].URL)
		assert.Equal(t, "zeta", got[1].Slug)
	})

	t.Run("owner filter shows hidden with draft urls", func(t *testing.T) {
		got := BuildProjectSummaries(candidates, ProjectQuery{OwnerID: "user-1"})
		require.Len(t, got, 2)
		assert.Equal(t, "draft-app", got[1].Name)
		assert.True(t, got[1].Hidden)
		assert.Equal(t, "/projects/draft-app/draft/files/icon.png", got[1].IconMap["64x64"].URL)
	})

	t.Run("badge category and search filters", func(t *testing.T) {
		assert.Len(t, BuildProjectSummaries(candidates, ProjectQuery{Badge: "mcore"}), 1)
		assert.Len(t, BuildProjectSummaries(candidates, ProjectQuery{Category: "game"}), 2)

		got := BuildProjectSummaries(candidates, ProjectQuery{Search: "snakes"})
		require.Len(t, got, 1)
		assert.Equal(t, "zeta", got[0].Slug)
	})

	t.Run("paging", func(t *testing.T) {
		got := BuildProjectSummaries(candidates, ProjectQuery{PageStart: 1, PageLength: 1})
		require.Len(t, got, 1)
		assert.Equal(t, "zeta", got[0].Slug)
		assert.Empty(t, BuildProjectSummaries(candidates, ProjectQuery{PageStart: 10}))
	})
}

func TestBuildProjectSummaries_SearchLimitCountsCharacters(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("é", 30) + strings.Repeat("q", 20)
	candidates := []SummaryCandidate{
		{Project: Project{Slug: "short"}, AppMetadata: AppMetadata{Description: strings.Repeat("é", 25)}},
		{Project: Project{Slug: "full"}, AppMetadata: AppMetadata{Description: prefix}},
	}

	got := BuildProjectSummaries(candidates, ProjectQuery{Search: prefix + "ignored"})
	require.Len(t, got, 1)
	assert.Equal(t, "full", got[0].Slug)
}
