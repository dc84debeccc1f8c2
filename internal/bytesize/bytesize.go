// Package bytesize parses and prints human-readable sizes such as "32Mi"
// or "500KB" for configuration values.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes.
type ByteSize int64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
)

type unit struct {
	suffix string
	size   ByteSize
}

// units is ordered so that longer suffixes are tried before their prefixes.
var units = []unit{
	{"kib", KiB}, {"mib", MiB}, {"gib", GiB},
	{"ki", KiB}, {"mi", MiB}, {"gi", GiB},
	{"kb", KB}, {"mb", MB}, {"gb", GB},
	{"k", KB}, {"m", MB}, {"g", GB},
	{"b", B},
}

// printUnits lists the binary units String tries, largest first.
var printUnits = []unit{{"Gi", GiB}, {"Mi", MiB}, {"Ki", KiB}}

// Parse reads a size such as "1024", "32Mi", "1.5GiB" or "100 KB".
// Binary suffixes are powers of 1024, decimal ones powers of 1000.
func Parse(s string) (ByteSize, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := B
	for _, u := range units {
		if strings.HasSuffix(text, u.suffix) {
			text = strings.TrimSpace(strings.TrimSuffix(text, u.suffix))
			mult = u.size
			break
		}
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		return ByteSize(n) * mult, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return ByteSize(f * float64(mult)), nil
}

// String prints the size with the largest binary unit that divides it
// exactly, so the result parses back to the same value.
func (b ByteSize) String() string {
	if b != 0 {
		for _, u := range printUnits {
			if b%u.size == 0 {
				return strconv.FormatInt(int64(b/u.size), 10) + u.suffix
			}
		}
	}
	return strconv.FormatInt(int64(b), 10)
}

// Int64 returns the size in bytes.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}
