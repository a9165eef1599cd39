package composition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPredictor records how often the surrogate is consulted.
type countingPredictor struct {
	value float64
	calls int
}

func (p *countingPredictor) Predict(x []float64) float64 {
	p.calls++
	return p.value
}

func TestObjectiveNegatesPrediction(t *testing.T) {
	model := &countingPredictor{value: 73.5}
	obj := NewObjective(model, DefaultPenalty)

	got := obj.Evaluate(30, 30)
	assert.InDelta(t, -73.5, got, 1e-12)
	assert.Equal(t, 1, model.calls)
}

func TestObjectivePenaltyShortCircuits(t *testing.T) {
	model := &countingPredictor{value: 73.5}
	obj := NewObjective(model, DefaultPenalty)

	got := obj.Evaluate(60, 50)
	assert.Equal(t, DefaultPenalty, got)
	assert.Equal(t, 0, model.calls, "surrogate must not be consulted for infeasible blends")
}

func TestObjectiveBoundaryIsFeasible(t *testing.T) {
	model := &countingPredictor{value: 10}
	obj := NewObjective(model, DefaultPenalty)

	// a + b = 100 leaves exactly zero for the third component, which is
	// still a valid blend.
	got := obj.Evaluate(60, 40)
	assert.InDelta(t, -10, got, 1e-12)
	assert.Equal(t, 1, model.calls)
}

func TestObjectiveCustomPenalty(t *testing.T) {
	model := &countingPredictor{}
	obj := NewObjective(model, 500)
	assert.Equal(t, 500.0, obj.Penalty())
	assert.Equal(t, 500.0, obj.Evaluate(60, 50))
}

func TestObjectiveDefaultPenaltyFallback(t *testing.T) {
	obj := NewObjective(&countingPredictor{}, 0)
	assert.Equal(t, DefaultPenalty, obj.Penalty())

	obj = NewObjective(&countingPredictor{}, -1)
	assert.Equal(t, DefaultPenalty, obj.Penalty())
}

func TestObjectiveFunc(t *testing.T) {
	model := &countingPredictor{value: 5}
	fn := NewObjective(model, DefaultPenalty).Func()

	got, err := fn([]float64{30, 30})
	require.NoError(t, err)
	assert.InDelta(t, -5, got, 1e-12)

	_, err = fn([]float64{30})
	require.Error(t, err)
}

func TestPenaltyDominatesRealScores(t *testing.T) {
	// The penalty has to exceed any plausible negated prediction so the
	// optimizer never prefers an infeasible blend.
	model := &countingPredictor{value: -1e4}
	obj := NewObjective(model, DefaultPenalty)

	feasible := obj.Evaluate(30, 30)
	infeasible := obj.Evaluate(60, 50)
	assert.Less(t, feasible, infeasible)
}
