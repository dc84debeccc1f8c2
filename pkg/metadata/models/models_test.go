package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/badgehub/badgehub/pkg/metadata"
)

func TestAllModels_TableNames(t *testing.T) {
	want := map[string]bool{
		"projects": true, "versions": true, "files": true,
		"registered_badges": true, "event_reports": true, "project_api_tokens": true,
	}

	for _, m := range AllModels() {
		tn, ok := m.(interface{ TableName() string })
		require.True(t, ok, "%T has no TableName", m)
		assert.True(t, want[tn.TableName()], "unexpected table %q", tn.TableName())
		delete(want, tn.TableName())
	}
	assert.Empty(t, want)
}

func TestVersion_AppMetadataColumnKeepsUnknownFields(t *testing.T) {
	md := metadata.AppMetadata{
		Name:  "Snake",
		Extra: map[string]json.RawMessage{"stars": json.RawMessage(`5`)},
	}
	v := Version{ProjectSlug: "snake", Revision: 2, AppMetadata: datatypes.NewJSONType(md)}

	raw, err := v.AppMetadata.Value()
	require.NoError(t, err)

	var scanned datatypes.JSONType[metadata.AppMetadata]
	require.NoError(t, scanned.Scan(raw))
	v.AppMetadata = scanned

	got := v.ToDomain()
	assert.Equal(t, "Snake", got.AppMetadata.Name)
	assert.JSONEq(t, `5`, string(got.AppMetadata.Extra["stars"]))
	assert.False(t, got.Published())
}
