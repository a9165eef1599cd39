// Package composition models two-component alloy blends whose third
// component is fixed by a mass-balance constraint.
package composition

import "fmt"

// Total is the fixed sum of all three component fractions.
const Total = 100.0

// DefaultPenalty is substituted for the predicted score whenever a blend
// violates the mass balance. It must dominate any attainable real score.
const DefaultPenalty = 1e5

// Blend is a pair of independent component fractions. The third component
// is always derived from these two and is never stored.
type Blend struct {
	A float64
	B float64
}

// Derived returns the third component fraction implied by the mass balance.
func (bl Blend) Derived() float64 {
	return Total - bl.A - bl.B
}

// Feasible reports whether the derived third component is non-negative.
func (bl Blend) Feasible() bool {
	return bl.Derived() >= 0
}

// Vector returns the blend as an ordered parameter vector.
func (bl Blend) Vector() []float64 {
	return []float64{bl.A, bl.B}
}

// FromVector builds a Blend from an ordered parameter vector.
func FromVector(x []float64) (Blend, error) {
	if len(x) != 2 {
		return Blend{}, fmt.Errorf("composition: expected 2 parameters, got %d", len(x))
	}
	return Blend{A: x[0], B: x[1]}, nil
}

// Bounds describes the inclusive search range for one component fraction.
type Bounds struct {
	Lo float64
	Hi float64
}

// Validate reports an error when the lower bound is not strictly below the
// upper bound. Invalid bounds are fatal at configuration time.
func (b Bounds) Validate() error {
	if b.Lo >= b.Hi {
		return fmt.Errorf("composition: invalid bounds [%g, %g]: lower bound must be strictly below upper bound", b.Lo, b.Hi)
	}
	return nil
}

// SearchSpace is the bounded rectangle over which blends are searched.
type SearchSpace struct {
	A Bounds
	B Bounds
}

// DefaultSearchSpace returns the standard design space for the two
// independent fractions.
func DefaultSearchSpace() SearchSpace {
	return SearchSpace{
		A: Bounds{Lo: 20, Hi: 60},
		B: Bounds{Lo: 20, Hi: 50},
	}
}

// Validate checks both dimensions.
func (s SearchSpace) Validate() error {
	if err := s.A.Validate(); err != nil {
		return err
	}
	return s.B.Validate()
}

// Rect returns the space as [min, max] pairs in parameter-vector order.
func (s SearchSpace) Rect() [][2]float64 {
	return [][2]float64{
		{s.A.Lo, s.A.Hi},
		{s.B.Lo, s.B.Hi},
	}
}

// Contains reports whether the blend lies inside the rectangle. The mass
// balance is deliberately not part of this check: points inside the
// rectangle can still be infeasible.
func (s SearchSpace) Contains(bl Blend) bool {
	return bl.A >= s.A.Lo && bl.A <= s.A.Hi && bl.B >= s.B.Lo && bl.B <= s.B.Hi
}
