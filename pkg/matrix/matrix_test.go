package matrix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/RCBiczok/terraces/pkg/errors"
)

func TestParseData(t *testing.T) {
	input := `5 2
10 s1
10 s2
11 s3
01 s4
01 s5
`
	m, err := ParseData(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if m.Rows() != 5 || m.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 5x2", m.Rows(), m.Cols())
	}
	if m.Species()[2] != "s3" {
		t.Errorf("species 2 = %q, want s3", m.Species()[2])
	}
	if !m.HasData(0, 0) || m.HasData(0, 1) {
		t.Errorf("row s1 = (%d,%d), want (1,0)", m.Get(0, 0), m.Get(0, 1))
	}
	if got := m.FullDataSpecies(); got != 2 {
		t.Errorf("FullDataSpecies = %d, want 2", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestParseDataErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"bad header", "nope\n", errors.ErrCodeInvalidInput},
		{"row count mismatch", "3 2\n10 s1\n01 s2\n", errors.ErrCodeSpeciesCountMismatch},
		{"bad entry", "2 2\n1x s1\n01 s2\n", errors.ErrCodeMatrixNotBinary},
		{"width mismatch", "2 2\n101 s1\n01 s2\n", errors.ErrCodeInvalidInput},
		{"missing name", "1 2\n10\n", errors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseData(strings.NewReader(tc.input))
			if !errors.Is(err, tc.code) {
				t.Errorf("err = %v, want code %s", err, tc.code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	m := New([]string{"a", "b"}, 2)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}

	m.Set(1, 1, 3)
	if err := m.Validate(); !errors.Is(err, errors.ErrCodeMatrixNotBinary) {
		t.Errorf("err = %v, want MATRIX_NOT_BINARY", err)
	}

	m.Set(1, 1, 0)
	if err := m.Validate(); !errors.Is(err, errors.ErrCodeSpeciesWithoutData) {
		t.Errorf("err = %v, want SPECIES_WITHOUT_DATA", err)
	}
}

func TestFullDataSpeciesMissing(t *testing.T) {
	m := New([]string{"a", "b"}, 2)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	if got := m.FullDataSpecies(); got != -1 {
		t.Errorf("FullDataSpecies = %d, want -1", got)
	}
}

func TestSpeciesIndex(t *testing.T) {
	m := New([]string{"a", "b"}, 1)
	if got := m.SpeciesIndex("b"); got != 1 {
		t.Errorf("SpeciesIndex(b) = %d, want 1", got)
	}
	if got := m.SpeciesIndex("zz"); got != -1 {
		t.Errorf("SpeciesIndex(zz) = %d, want -1", got)
	}
}

func TestWriteNexus(t *testing.T) {
	m := New([]string{"alpha", "b"}, 2)
	m.Set(0, 0, 1)
	m.Set(0, 1, 1)
	m.Set(1, 1, 1)

	var buf bytes.Buffer
	if err := m.WriteNexus(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"#NEXUS",
		"Dimensions ntax=2 nchar=2;",
		"alpha AA",
		"b     -A",
		"CHARSET  P1 = 1-1;",
		"CHARSET  P2 = 2-2;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("NEXUS output missing %q:\n%s", want, out)
		}
	}
}
