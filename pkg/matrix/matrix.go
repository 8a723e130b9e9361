// Package matrix implements the per-partition presence/absence matrix.
//
// A matrix records, for every species, which alignment partitions carry
// data for it. Rows are species, columns are partitions, entries are 0/1.
// The matrix drives two decisions during a terrace analysis: which species
// roots the supertree (the first row with data in every partition) and
// which species participate in each partition's induced subtree.
package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/RCBiczok/terraces/pkg/errors"
)

// Matrix is a dense species × partitions presence/absence matrix.
// The zero value is not usable; use New or ParseData.
type Matrix struct {
	species    []string
	partitions int
	data       []uint8 // row-major, len = len(species) * partitions
}

// New creates a matrix for the given species names and partition count.
// All entries start at 0.
func New(species []string, partitions int) *Matrix {
	return &Matrix{
		species:    append([]string(nil), species...),
		partitions: partitions,
		data:       make([]uint8, len(species)*partitions),
	}
}

// Species returns the species names in row order.
// The returned slice must not be modified.
func (m *Matrix) Species() []string { return m.species }

// Rows returns the number of species.
func (m *Matrix) Rows() int { return len(m.species) }

// Cols returns the number of partitions.
func (m *Matrix) Cols() int { return m.partitions }

// Set stores an entry. Row and column must be in range.
func (m *Matrix) Set(species, partition int, value uint8) {
	m.data[species*m.partitions+partition] = value
}

// Get returns the raw entry for a species/partition pair.
func (m *Matrix) Get(species, partition int) uint8 {
	return m.data[species*m.partitions+partition]
}

// HasData reports whether the species has data in the partition.
func (m *Matrix) HasData(species, partition int) bool {
	return m.Get(species, partition) == 1
}

// SpeciesIndex returns the row of the named species, or -1.
func (m *Matrix) SpeciesIndex(name string) int {
	for i, s := range m.species {
		if s == name {
			return i
		}
	}
	return -1
}

// FullDataSpecies returns the first species row with data in every
// partition, or -1 if no such row exists. That species becomes the root
// species of the analysis.
func (m *Matrix) FullDataSpecies() int {
	for i := range m.species {
		full := true
		for j := 0; j < m.partitions; j++ {
			if !m.HasData(i, j) {
				full = false
				break
			}
		}
		if full {
			return i
		}
	}
	return -1
}

// Validate checks the matrix against the analysis contract: every entry
// is 0 or 1, and every species has data in at least one partition.
func (m *Matrix) Validate() error {
	for i := range m.species {
		any := false
		for j := 0; j < m.partitions; j++ {
			switch m.Get(i, j) {
			case 0:
			case 1:
				any = true
			default:
				return errors.New(errors.ErrCodeMatrixNotBinary,
					"matrix entry for species %q, partition %d is %d, want 0 or 1",
					m.species[i], j, m.Get(i, j))
			}
		}
		if !any {
			return errors.New(errors.ErrCodeSpeciesWithoutData,
				"species %q has no data in any partition", m.species[i])
		}
	}
	return nil
}

// ParseData reads the legacy .data format: a header line
// "<species> <partitions>" followed by one line per species holding a 0/1
// string and the species name.
func ParseData(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing data header")
	}
	var nSpecies, nPartitions int
	if _, err := fmt.Sscanf(strings.TrimSpace(scanner.Text()), "%d %d", &nSpecies, &nPartitions); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse data header %q", scanner.Text())
	}

	species := make([]string, 0, nSpecies)
	rows := make([][]uint8, 0, nSpecies)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"data line %q: want '<01-string> <name>'", line)
		}
		row := make([]uint8, len(fields[0]))
		for k, c := range fields[0] {
			switch c {
			case '0':
				row[k] = 0
			case '1':
				row[k] = 1
			default:
				return nil, errors.New(errors.ErrCodeMatrixNotBinary,
					"data line %q: entry %q is not 0 or 1", line, string(c))
			}
		}
		if len(row) != nPartitions {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"species %q has %d entries, header declares %d partitions",
				fields[1], len(row), nPartitions)
		}
		species = append(species, fields[1])
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read data file")
	}
	if len(species) != nSpecies {
		return nil, errors.New(errors.ErrCodeSpeciesCountMismatch,
			"data file has %d species rows, header declares %d", len(species), nSpecies)
	}

	m := New(species, nPartitions)
	for i, row := range rows {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// WriteNexus writes the matrix as a NEXUS data block, one character per
// partition ('A' for present, '-' for missing), with a CHARSET per
// partition. Useful for feeding the same analysis to other phylogenetics
// tools.
func (m *Matrix) WriteNexus(w io.Writer) error {
	maxLen := 0
	for _, s := range m.species {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#NEXUS\n")
	fmt.Fprintf(bw, "Begin data;\n")
	fmt.Fprintf(bw, "    Dimensions ntax=%d nchar=%d;\n", m.Rows(), m.Cols())
	fmt.Fprintf(bw, "    Format datatype=dna gap=-;\n")
	fmt.Fprintf(bw, "    Matrix\n")
	for i, s := range m.species {
		fmt.Fprintf(bw, "%-*s", maxLen+1, s)
		for j := 0; j < m.partitions; j++ {
			if m.HasData(i, j) {
				bw.WriteByte('A')
			} else {
				bw.WriteByte('-')
			}
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "\t;\n")
	fmt.Fprintf(bw, "End;\n\n")
	fmt.Fprintf(bw, "BEGIN SETS;\n")
	for j := 0; j < m.partitions; j++ {
		fmt.Fprintf(bw, "\tCHARSET  P%d = %d-%d;\n", j+1, j+1, j+1)
	}
	fmt.Fprintf(bw, "END;\n")
	return bw.Flush()
}
