package tempo

import "strings"

// Subdivision selects the secondary clicks inserted within each beat.
type Subdivision int

const (
	Quarter Subdivision = iota // no subdivision
	Eighths
	Sixteenths
	Triplets
	Swing
)

var subdivisionNames = [...]string{
	Quarter:    "quarter",
	Eighths:    "eighths",
	Sixteenths: "sixteenths",
	Triplets:   "triplets",
	Swing:      "swing",
}

func (s Subdivision) String() string {
	if s < Quarter || s > Swing {
		return "unknown"
	}
	return subdivisionNames[s]
}

// ParseSubdivision maps a mode name to a Subdivision. "none" is accepted as
// an alias for quarter.
func ParseSubdivision(name string) (Subdivision, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "none" {
		return Quarter, true
	}
	for i, n := range subdivisionNames {
		if n == name {
			return Subdivision(i), true
		}
	}
	return Quarter, false
}

// Offsets returns the positions of the sub-clicks as fractions of one beat.
func (s Subdivision) Offsets() []float64 {
	switch s {
	case Eighths:
		return []float64{1.0 / 2}
	case Sixteenths:
		return []float64{1.0 / 4, 1.0 / 2, 3.0 / 4}
	case Triplets:
		return []float64{1.0 / 3, 2.0 / 3}
	case Swing:
		// off-beat lands on the last triplet
		return []float64{2.0 / 3}
	}
	return nil
}

// Soft reports whether sub-clicks of this pattern use the softer timbre.
func (s Subdivision) Soft() bool {
	return s == Swing
}

// Next cycles through the modes in display order.
func (s Subdivision) Next() Subdivision {
	if s < Quarter || s >= Swing {
		return Quarter
	}
	return s + 1
}

// Modes lists every subdivision in display order.
func Modes() []Subdivision {
	return []Subdivision{Quarter, Eighths, Sixteenths, Triplets, Swing}
}
