// Package kernels provides covariance functions for Gaussian process
// regression.
package kernels

import (
	"fmt"
	"math"
)

// Kernel is a covariance function over pairs of input points.
type Kernel interface {
	// Eval computes the covariance between x1 and x2.
	Eval(x1, x2 []float64) float64

	// Hyperparameters returns the current hyperparameters.
	Hyperparameters() []float64

	// SetHyperparameters replaces the kernel's hyperparameters.
	SetHyperparameters(params []float64) error
}

func sqDist(x1, x2 []float64) float64 {
	sum := 0.0
	for i := range x1 {
		d := x1[i] - x2[i]
		sum += d * d
	}
	return sum
}

func checkScaleParams(params []float64) error {
	if len(params) != 2 {
		return fmt.Errorf("expected 2 hyperparameters, got %d", len(params))
	}
	if params[0] <= 0 || params[1] <= 0 {
		return fmt.Errorf("hyperparameters must be positive, got %v", params)
	}
	return nil
}

// RBF is the squared-exponential kernel. Larger length scales produce
// smoother functions; the signal variance sets the amplitude.
type RBF struct {
	lengthScale float64
	signalVar   float64
}

// NewRBF creates an RBF kernel. Both parameters must be positive.
func NewRBF(lengthScale, signalVar float64) *RBF {
	if lengthScale <= 0 || signalVar <= 0 {
		panic(fmt.Sprintf("kernel parameters must be positive, got lengthScale=%v signalVar=%v", lengthScale, signalVar))
	}
	return &RBF{lengthScale: lengthScale, signalVar: signalVar}
}

// Eval computes the squared-exponential covariance.
func (k *RBF) Eval(x1, x2 []float64) float64 {
	return k.signalVar * math.Exp(-sqDist(x1, x2)/(2*k.lengthScale*k.lengthScale))
}

// Hyperparameters returns {lengthScale, signalVar}.
func (k *RBF) Hyperparameters() []float64 {
	return []float64{k.lengthScale, k.signalVar}
}

// SetHyperparameters replaces {lengthScale, signalVar}.
func (k *RBF) SetHyperparameters(params []float64) error {
	if err := checkScaleParams(params); err != nil {
		return err
	}
	k.lengthScale = params[0]
	k.signalVar = params[1]
	return nil
}

// Matern52 is the Matérn kernel with smoothness 5/2, a common default for
// Bayesian optimization because it tolerates less smooth objectives than RBF.
type Matern52 struct {
	lengthScale float64
	signalVar   float64
}

// NewMatern52 creates a Matérn 5/2 kernel. Both parameters must be positive.
func NewMatern52(lengthScale, signalVar float64) *Matern52 {
	if lengthScale <= 0 || signalVar <= 0 {
		panic(fmt.Sprintf("kernel parameters must be positive, got lengthScale=%v signalVar=%v", lengthScale, signalVar))
	}
	return &Matern52{lengthScale: lengthScale, signalVar: signalVar}
}

// Eval computes the Matérn 5/2 covariance.
func (k *Matern52) Eval(x1, x2 []float64) float64 {
	r := math.Sqrt(sqDist(x1, x2)) / k.lengthScale
	s5r := math.Sqrt(5) * r
	return k.signalVar * (1 + s5r + 5.0/3.0*r*r) * math.Exp(-s5r)
}

// Hyperparameters returns {lengthScale, signalVar}.
func (k *Matern52) Hyperparameters() []float64 {
	return []float64{k.lengthScale, k.signalVar}
}

// SetHyperparameters replaces {lengthScale, signalVar}.
func (k *Matern52) SetHyperparameters(params []float64) error {
	if err := checkScaleParams(params); err != nil {
		return err
	}
	k.lengthScale = params[0]
	k.signalVar = params[1]
	return nil
}
