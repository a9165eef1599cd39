package acquisition

import (
	"math"
	"testing"
)

func TestUpperConfidenceBound(t *testing.T) {
	tests := []struct {
		name  string
		beta  float64
		mu    float64
		sigma float64
		want  float64
	}{
		{
			name:  "no uncertainty is pure exploitation",
			beta:  2.0,
			mu:    1.5,
			sigma: 0.0,
			want:  -1.5,
		},
		{
			name:  "uncertainty raises the score",
			beta:  2.0,
			mu:    1.5,
			sigma: 0.5,
			want:  -0.5,
		},
		{
			name:  "zero beta ignores uncertainty",
			beta:  0.0,
			mu:    -0.3,
			sigma: 10.0,
			want:  0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUpperConfidenceBound(tt.beta)
			if got := u.Compute(tt.mu, tt.sigma); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Compute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpperConfidenceBoundPrefersLowerMean(t *testing.T) {
	u := NewUpperConfidenceBound(2.0)
	better := u.Compute(0.2, 0.1)
	worse := u.Compute(0.8, 0.1)
	if better <= worse {
		t.Errorf("lower posterior mean should score higher: %v <= %v", better, worse)
	}
}

func TestUpperConfidenceBoundSetBeta(t *testing.T) {
	u := NewUpperConfidenceBound(1.0)
	before := u.Compute(0, 1)
	u.SetBeta(3.0)
	after := u.Compute(0, 1)
	if after <= before {
		t.Errorf("larger beta should reward uncertainty more: %v <= %v", after, before)
	}

	// UpdateBest is a no-op for UCB.
	u.UpdateBest(-100)
	if got := u.Compute(0, 1); got != after {
		t.Errorf("UpdateBest changed the score: %v != %v", got, after)
	}
}
