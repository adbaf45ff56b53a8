package assoc

import "fmt"

// HypothesisKind is the class of an association hypothesis
type HypothesisKind uint8

const (
	// Clutter means observation was not produced by any target
	Clutter HypothesisKind = iota
	// Existing means observation confirms one of the predicted targets
	Existing
	// Newborn means observation is the first sighting of a new target
	Newborn
)

func (kind HypothesisKind) String() string {
	switch kind {
	case Clutter:
		return "clutter"
	case Existing:
		return "existing"
	case Newborn:
		return "newborn"
	default:
		return fmt.Sprintf("HypothesisKind(%d)", uint8(kind))
	}
}

// Hypothesis is a tagged variant: Target is meaningful for Existing only and holds target index
type Hypothesis struct {
	Kind   HypothesisKind
	Target int
}

// ClutterHypothesis returns clutter hypothesis
func ClutterHypothesis() Hypothesis {
	return Hypothesis{Kind: Clutter, Target: -1}
}

// NewbornHypothesis returns newborn hypothesis
func NewbornHypothesis() Hypothesis {
	return Hypothesis{Kind: Newborn, Target: -1}
}

// ExistingHypothesis returns hypothesis of association to the target with index n
func ExistingHypothesis(n int) Hypothesis {
	return Hypothesis{Kind: Existing, Target: n}
}

func (h Hypothesis) String() string {
	if h.Kind == Existing {
		return fmt.Sprintf("existing(%d)", h.Target)
	}
	return h.Kind.String()
}

// hypothesisAt maps position in categorical weight vector [clutter, targets..., newborn] to hypothesis
func hypothesisAt(idx, numTargets int) Hypothesis {
	switch {
	case idx == 0:
		return ClutterHypothesis()
	case idx <= numTargets:
		return ExistingHypothesis(idx - 1)
	default:
		return NewbornHypothesis()
	}
}
