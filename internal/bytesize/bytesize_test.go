package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"512B", 512},
		{"1Ki", KiB},
		{"1KiB", KiB},
		{"32Mi", 32 * MiB},
		{"32mib", 32 * MiB},
		{"2Gi", 2 * GiB},
		{"1K", KB},
		{"100MB", 100 * MB},
		{"1G", GB},
		{" 8 Mi ", 8 * MiB},
		{"1.5Mi", ByteSize(1.5 * float64(MiB))},
		{"0.5KB", 500},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "Mi", "12XB", "-5", "-1Mi", "one"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		size ByteSize
		want string
	}{
		{0, "0"},
		{1000, "1000"},
		{KiB, "1Ki"},
		{32 * MiB, "32Mi"},
		{3 * GiB, "3Gi"},
		{MiB + 1, "1048577"},
		{1536 * KiB, "1536Ki"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.size.String())
	}
}

func TestStringParsesBack(t *testing.T) {
	for _, size := range []ByteSize{0, 1, KiB, 32 * MiB, 7*MiB + 3} {
		got, err := Parse(size.String())
		require.NoError(t, err)
		assert.Equal(t, size, got)
	}
}

func TestText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("16Mi")))
	assert.Equal(t, 16*MiB, b)
	assert.Equal(t, int64(16<<20), b.Int64())

	text, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "16Mi", string(text))

	assert.Error(t, b.UnmarshalText([]byte("lots")))
	assert.Equal(t, 16*MiB, b)
}
