package model

import (
	"fmt"
	"sort"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Family bundles both variants of a model of the same system
type Family struct {
	// Name is family name
	Name string
	// Model is the conventional model used by RMLM and data generation
	Model identify.Model
	// Augmented is the model with parameters appended to its state used by EKF
	Augmented identify.AugmentedModel
	// Theta holds the true parameters used for data generation
	Theta *mat.VecDense
}

var families = map[string]func() *Family{
	"position": func() *Family {
		return &Family{
			Name:      "position",
			Model:     NewPosition(),
			Augmented: NewPositionExt(),
			Theta:     mat.NewVecDense(2, []float64{4.6, 0.787}),
		}
	},
}

// Lookup returns a new instance of the named model family.
// It returns error if no family is registered under name.
func Lookup(name string) (*Family, error) {
	newFamily, ok := families[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %q, available models: %v", name, Names())
	}

	return newFamily(), nil
}

// Names returns sorted names of the registered model families
func Names() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
