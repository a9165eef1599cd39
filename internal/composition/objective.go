package composition

// Predictor is the fitted surrogate the objective closes over. It must be a
// pure function of the blend after fitting.
type Predictor interface {
	Predict(x []float64) float64
}

// Objective wraps a fitted surrogate behind a minimization interface and
// enforces the mass-balance constraint with a fixed penalty.
type Objective struct {
	model   Predictor
	penalty float64
}

// NewObjective builds a constrained objective over a fitted surrogate.
// A non-positive penalty falls back to DefaultPenalty.
func NewObjective(model Predictor, penalty float64) *Objective {
	if penalty <= 0 {
		penalty = DefaultPenalty
	}
	return &Objective{model: model, penalty: penalty}
}

// Penalty returns the value substituted for infeasible blends.
func (o *Objective) Penalty() float64 {
	return o.penalty
}

// Evaluate returns the minimization target at (a, b). Infeasible blends
// short-circuit to the penalty before the surrogate is consulted; feasible
// blends return the negated prediction so that minimizing the objective
// maximizes the predicted score.
func (o *Objective) Evaluate(a, b float64) float64 {
	bl := Blend{A: a, B: b}
	if !bl.Feasible() {
		return o.penalty
	}
	return -o.model.Predict(bl.Vector())
}

// Func adapts the objective to the optimizer's vector-valued signature.
func (o *Objective) Func() func(x []float64) (float64, error) {
	return func(x []float64) (float64, error) {
		bl, err := FromVector(x)
		if err != nil {
			return 0, err
		}
		return o.Evaluate(bl.A, bl.B), nil
	}
}
