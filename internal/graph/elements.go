package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/mace/internal/errkind"
)

var symbols = [...]string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
	"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// AtomicNumber returns the atomic number of a chemical symbol. Matching
// is case-insensitive.
func AtomicNumber(symbol string) (int, bool) {
	for z := 1; z < len(symbols); z++ {
		if strings.EqualFold(symbols[z], symbol) {
			return z, true
		}
	}
	return 0, false
}

// Symbol returns the chemical symbol of atomic number z, or "X" when z is
// out of range.
func Symbol(z int) string {
	if z <= 0 || z >= len(symbols) {
		return symbols[0]
	}
	return symbols[z]
}

// ElementTable is the ordered set of atomic numbers a model knows. The
// position of an element in the table is its species index, which selects
// one-hot embeddings and species-dependent weights.
//
// An ElementTable is immutable once created.
type ElementTable struct {
	numbers []int
	index   map[int]int
}

// NewElementTable creates a table with the given order.
//
// Returns ErrConfiguration for an empty list, duplicates, or atomic
// numbers outside the periodic table.
func NewElementTable(numbers []int) (ElementTable, error) {
	if len(numbers) == 0 {
		return ElementTable{}, fmt.Errorf("empty element table: %w", errkind.ErrConfiguration)
	}
	t := ElementTable{
		numbers: append([]int(nil), numbers...),
		index:   make(map[int]int, len(numbers)),
	}
	for i, z := range numbers {
		if z <= 0 || z >= len(symbols) {
			return ElementTable{}, fmt.Errorf("atomic number %d: %w", z, errkind.ErrConfiguration)
		}
		if _, dup := t.index[z]; dup {
			return ElementTable{}, fmt.Errorf("duplicate atomic number %d: %w", z, errkind.ErrConfiguration)
		}
		t.index[z] = i
	}
	return t, nil
}

// ElementTableFromStructures returns the sorted distinct atomic numbers of
// all structures.
func ElementTableFromStructures(structures []Structure) (ElementTable, error) {
	seen := make(map[int]bool)
	var numbers []int
	for _, s := range structures {
		for _, z := range s.Numbers {
			if !seen[z] {
				seen[z] = true
				numbers = append(numbers, z)
			}
		}
	}
	sort.Ints(numbers)
	return NewElementTable(numbers)
}

// Len returns the number of elements.
func (t ElementTable) Len() int {
	return len(t.numbers)
}

// Numbers returns a copy of the atomic numbers in table order.
func (t ElementTable) Numbers() []int {
	return append([]int(nil), t.numbers...)
}

// Index returns the species index of atomic number z.
func (t ElementTable) Index(z int) (int, bool) {
	i, ok := t.index[z]
	return i, ok
}

// OneHot returns the one-hot encoding of atomic number z.
func (t ElementTable) OneHot(z int) ([]float64, error) {
	i, ok := t.index[z]
	if !ok {
		return nil, fmt.Errorf("element %s (Z=%d) not in table: %w", Symbol(z), z, errkind.ErrInvalidInput)
	}
	v := make([]float64, len(t.numbers))
	v[i] = 1
	return v, nil
}

// String formats the table as "{H:1, O:8}".
func (t ElementTable) String() string {
	parts := make([]string, len(t.numbers))
	for i, z := range t.numbers {
		parts[i] = fmt.Sprintf("%s:%d", Symbol(z), z)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
