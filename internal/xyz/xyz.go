// Package xyz reads and writes structures in the XYZ and extended XYZ
// formats.
//
// A frame is an atom count, a comment line and one line per atom. In
// extended XYZ the comment holds key=value pairs; Lattice, pbc, energy and
// Properties are understood and other keys are ignored:
//
//	3
//	Lattice="10 0 0 0 10 0 0 0 10" pbc="T T T" energy=-14.2 Properties=species:S:1:pos:R:3
//	O 0.000 0.000 0.000
//	H 0.757 0.586 0.000
//	H -0.757 0.586 0.000
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/graph"
)

// property is one entry of the Properties key: a name, a type code and a
// column count.
type property struct {
	name string
	kind byte
	cols int
}

var defaultProperties = []property{{"species", 'S', 1}, {"pos", 'R', 3}}

// ReadFile reads every frame of the file at path.
func ReadFile(path string) ([]graph.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	structures, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return structures, nil
}

// Read parses frames until EOF. Blank lines between frames are skipped.
// Returns ErrInvalidInput for malformed frames.
func Read(r io.Reader) ([]graph.Structure, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	var out []graph.Structure
	for {
		header, ok := next()
		if !ok {
			break
		}
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		n, err := strconv.Atoi(header)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: atom count %q: %w", line, header, errkind.ErrInvalidInput)
		}
		comment, ok := next()
		if !ok {
			return nil, fmt.Errorf("line %d: missing comment line: %w", line, errkind.ErrInvalidInput)
		}
		s, props, err := parseComment(comment)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.Numbers = make([]int, n)
		s.Positions = make([]r3.Vec, n)
		if hasProperty(props, "forces") {
			s.Forces = make([]r3.Vec, n)
		}
		for i := 0; i < n; i++ {
			text, ok := next()
			if !ok {
				return nil, fmt.Errorf("frame %d: %d of %d atoms: %w", len(out), i, n, errkind.ErrInvalidInput)
			}
			if err := parseAtom(strings.Fields(text), props, &s, i); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(out), err)
		}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseComment extracts the cell, periodicity, energy and column layout
// from an extended XYZ comment line. A plain comment yields a
// non-periodic structure with the default columns.
func parseComment(comment string) (graph.Structure, []property, error) {
	var s graph.Structure
	props := defaultProperties
	fields, err := splitKeyValues(comment)
	if err != nil {
		return s, nil, err
	}
	pbcSet := false
	for key, value := range fields {
		switch strings.ToLower(key) {
		case "lattice":
			nums, err := parseFloats(value, 9)
			if err != nil {
				return s, nil, fmt.Errorf("lattice: %w", err)
			}
			s.Cell = &graph.Cell{
				{X: nums[0], Y: nums[1], Z: nums[2]},
				{X: nums[3], Y: nums[4], Z: nums[5]},
				{X: nums[6], Y: nums[7], Z: nums[8]},
			}
		case "pbc":
			parts := strings.Fields(value)
			if len(parts) != 3 {
				return s, nil, fmt.Errorf("pbc %q needs 3 flags: %w", value, errkind.ErrInvalidInput)
			}
			for k, p := range parts {
				b, err := parseBool(p)
				if err != nil {
					return s, nil, err
				}
				s.PBC[k] = b
			}
			pbcSet = true
		case "energy":
			e, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return s, nil, fmt.Errorf("energy %q: %w", value, errkind.ErrInvalidInput)
			}
			s.Energy = &e
		case "properties":
			props, err = parseProperties(value)
			if err != nil {
				return s, nil, err
			}
		}
	}
	if s.Cell != nil && !pbcSet {
		s.PBC = [3]bool{true, true, true}
	}
	return s, props, nil
}

// splitKeyValues splits key=value pairs separated by whitespace. Values
// may be double quoted. Words without '=' are ignored, so plain comments
// parse to an empty map.
func splitKeyValues(line string) (map[string]string, error) {
	out := make(map[string]string)
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		start := i
		for i < len(line) && line[i] != '=' && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		key := line[start:i]
		if i >= len(line) || line[i] != '=' {
			continue
		}
		i++
		var value string
		if i < len(line) && line[i] == '"' {
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote after %s=: %w", key, errkind.ErrInvalidInput)
			}
			value = line[i+1 : i+1+end]
			i += end + 2
		} else {
			start = i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' {
				i++
			}
			value = line[start:i]
		}
		if key != "" {
			out[key] = value
		}
	}
	return out, nil
}

func parseProperties(value string) ([]property, error) {
	parts := strings.Split(value, ":")
	if len(parts)%3 != 0 {
		return nil, fmt.Errorf("properties %q: %w", value, errkind.ErrInvalidInput)
	}
	var props []property
	for i := 0; i < len(parts); i += 3 {
		cols, err := strconv.Atoi(parts[i+2])
		if err != nil || cols < 1 || len(parts[i+1]) != 1 {
			return nil, fmt.Errorf("properties entry %s: %w", strings.Join(parts[i:i+3], ":"), errkind.ErrInvalidInput)
		}
		props = append(props, property{name: parts[i], kind: parts[i+1][0], cols: cols})
	}
	if !hasProperty(props, "pos") || !(hasProperty(props, "species") || hasProperty(props, "Z")) {
		return nil, fmt.Errorf("properties %q needs pos and species or Z: %w", value, errkind.ErrInvalidInput)
	}
	return props, nil
}

func hasProperty(props []property, name string) bool {
	for _, p := range props {
		if p.name == name {
			return true
		}
	}
	return false
}

func parseAtom(fields []string, props []property, s *graph.Structure, i int) error {
	col := 0
	for _, p := range props {
		if col+p.cols > len(fields) {
			return fmt.Errorf("atom %d: %d columns, need %s: %w", i, len(fields), p.name, errkind.ErrInvalidInput)
		}
		vals := fields[col : col+p.cols]
		col += p.cols
		switch p.name {
		case "species":
			z, ok := graph.AtomicNumber(vals[0])
			if !ok {
				return fmt.Errorf("atom %d: unknown element %q: %w", i, vals[0], errkind.ErrInvalidInput)
			}
			s.Numbers[i] = z
		case "Z":
			z, err := strconv.Atoi(vals[0])
			if err != nil {
				return fmt.Errorf("atom %d: atomic number %q: %w", i, vals[0], errkind.ErrInvalidInput)
			}
			s.Numbers[i] = z
		case "pos", "forces":
			v, err := parseVec(vals)
			if err != nil {
				return fmt.Errorf("atom %d %s: %w", i, p.name, err)
			}
			if p.name == "pos" {
				s.Positions[i] = v
			} else {
				s.Forces[i] = v
			}
		}
	}
	return nil
}

func parseVec(vals []string) (r3.Vec, error) {
	if len(vals) != 3 {
		return r3.Vec{}, fmt.Errorf("%d components: %w", len(vals), errkind.ErrInvalidInput)
	}
	nums, err := parseFloats(strings.Join(vals, " "), 3)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{X: nums[0], Y: nums[1], Z: nums[2]}, nil
}

func parseFloats(value string, n int) ([]float64, error) {
	parts := strings.Fields(value)
	if len(parts) != n {
		return nil, fmt.Errorf("%d numbers, want %d: %w", len(parts), n, errkind.ErrInvalidInput)
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", p, errkind.ErrInvalidInput)
		}
		out[i] = f
	}
	return out, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "T", "TRUE", "1":
		return true, nil
	case "F", "FALSE", "0":
		return false, nil
	}
	return false, fmt.Errorf("flag %q: %w", s, errkind.ErrInvalidInput)
}

// Write writes structures as extended XYZ frames. Energy overrides the
// stored label of frame k when energies is non-nil.
func Write(w io.Writer, structures []graph.Structure, energies []float64) error {
	bw := bufio.NewWriter(w)
	for k, s := range structures {
		var meta []string
		if s.Cell != nil {
			var nums []string
			for _, a := range s.Cell {
				nums = append(nums, formatFloat(a.X), formatFloat(a.Y), formatFloat(a.Z))
			}
			meta = append(meta, fmt.Sprintf("Lattice=%q", strings.Join(nums, " ")))
		}
		flags := make([]string, 3)
		for i, p := range s.PBC {
			flags[i] = "F"
			if p {
				flags[i] = "T"
			}
		}
		meta = append(meta, fmt.Sprintf("pbc=%q", strings.Join(flags, " ")))
		switch {
		case energies != nil:
			meta = append(meta, "energy="+formatFloat(energies[k]))
		case s.Energy != nil:
			meta = append(meta, "energy="+formatFloat(*s.Energy))
		}
		props := "species:S:1:pos:R:3"
		if s.Forces != nil {
			props += ":forces:R:3"
		}
		meta = append(meta, "Properties="+props)

		fmt.Fprintf(bw, "%d\n%s\n", s.Len(), strings.Join(meta, " "))
		for i, p := range s.Positions {
			fmt.Fprintf(bw, "%-2s %s %s %s", graph.Symbol(s.Numbers[i]), formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
			if s.Forces != nil {
				f := s.Forces[i]
				fmt.Fprintf(bw, " %s %s %s", formatFloat(f.X), formatFloat(f.Y), formatFloat(f.Z))
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
