// Package stratify partitions molecules into named, possibly overlapping
// chemical classes defined by substructure patterns.
package stratify

import (
	"github.com/turtacn/odorscape/internal/config"
	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/pkg/errors"
)

// Definition is the textual form of a class.
type Definition struct {
	Name    string
	Pattern string
	Invert  bool
}

// DefaultDefinitions are the eleven built-in classes.  Inorganic is the
// inverted carbon query; classes overlap freely.
var DefaultDefinitions = []Definition{
	{Name: "All", Pattern: "*"},
	{Name: "Inorganic", Pattern: "[#6]", Invert: true},
	{Name: "Aromatic", Pattern: "a"},
	{Name: "Alcohol", Pattern: "[CX4][OX2H]"},
	{Name: "Aldehyde", Pattern: "[CX3H1](=O)[#6]"},
	{Name: "Ketone", Pattern: "[#6][CX3](=O)[#6]"},
	{Name: "Carboxylic acid", Pattern: "[CX3](=O)[OX2H1]"},
	{Name: "Ester", Pattern: "[#6][CX3](=O)[OX2H0][#6]"},
	{Name: "Nitrogen-containing", Pattern: "[#7]"},
	{Name: "Sulfur-containing", Pattern: "[#16]"},
	{Name: "Halogenated", Pattern: "[F,Cl,Br,I]"},
}

// Class is a compiled class predicate.  Pattern keeps the query text for
// display.
type Class struct {
	Name    string
	Pattern string
	Matcher molecule.SubstructureMatcher
	Invert  bool
}

// NewClass compiles a class definition.
func NewClass(d Definition) (Class, error) {
	if d.Name == "" {
		return Class{}, errors.InvalidParam("class name is required")
	}
	pat, err := molecule.CompileSMARTS(d.Pattern)
	if err != nil {
		return Class{}, errors.Wrap(err, errors.CodeSubstructureQueryInvalid, "invalid class pattern").WithDetail(d.Name)
	}
	return Class{Name: d.Name, Pattern: pat.SMARTS, Matcher: pat, Invert: d.Invert}, nil
}

// Member reports whether m belongs to the class: match XOR Invert.
func (c Class) Member(m *molecule.Molecule) bool {
	return c.Matcher.Matches(m) != c.Invert
}

// ClassSet is an immutable, ordered collection of classes with unique names.
type ClassSet struct {
	classes []Class
}

// NewClassSet compiles defs.  An empty list yields the default set.
func NewClassSet(defs []Definition) (ClassSet, error) {
	if len(defs) == 0 {
		defs = DefaultDefinitions
	}
	seen := make(map[string]bool, len(defs))
	classes := make([]Class, 0, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			return ClassSet{}, errors.InvalidParam("duplicate class name").WithDetail(d.Name)
		}
		seen[d.Name] = true
		c, err := NewClass(d)
		if err != nil {
			return ClassSet{}, err
		}
		classes = append(classes, c)
	}
	return ClassSet{classes: classes}, nil
}

// FromConfig builds a class set from evaluation.classes.
func FromConfig(cfg []config.ClassConfig) (ClassSet, error) {
	defs := make([]Definition, len(cfg))
	for i, c := range cfg {
		defs[i] = Definition{Name: c.Name, Pattern: c.Pattern, Invert: c.Invert}
	}
	return NewClassSet(defs)
}

// DefaultClassSet returns the built-in classes.
func DefaultClassSet() ClassSet {
	s, err := NewClassSet(nil)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of classes.
func (s ClassSet) Len() int { return len(s.classes) }

// Classes returns a copy of the classes in definition order.
func (s ClassSet) Classes() []Class { return append([]Class(nil), s.classes...) }

// Names returns the class names in definition order.
func (s ClassSet) Names() []string {
	out := make([]string, len(s.classes))
	for i, c := range s.classes {
		out[i] = c.Name
	}
	return out
}

// Membership is the per-record membership of one class.
type Membership struct {
	Class   string
	Members []bool // aligned to dataset order
	Count   int
}

// Stratify evaluates every class on every record of ds.
func (s ClassSet) Stratify(ds *dataset.Dataset) []Membership {
	out := make([]Membership, len(s.classes))
	for ci, c := range s.classes {
		mb := Membership{Class: c.Name, Members: make([]bool, ds.Len())}
		for i, r := range ds.Records() {
			if c.Member(r.Molecule) {
				mb.Members[i] = true
				mb.Count++
			}
		}
		out[ci] = mb
	}
	return out
}
