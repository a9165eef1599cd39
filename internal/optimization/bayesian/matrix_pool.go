package bayesian

import "gonum.org/v1/gonum/mat"

// MatrixPool recycles gonum matrices across GP refits. The optimizer refits
// the GP once per iteration, so the kernel matrix allocation is hot.
type MatrixPool struct {
	sym []*mat.SymDense
	vec []*mat.VecDense
}

// NewMatrixPool creates an empty pool.
func NewMatrixPool() *MatrixPool {
	return &MatrixPool{
		sym: make([]*mat.SymDense, 0, 8),
		vec: make([]*mat.VecDense, 0, 8),
	}
}

// GetSymDense returns a pooled symmetric matrix of order n, or a fresh one.
func (p *MatrixPool) GetSymDense(n int) *mat.SymDense {
	for i := len(p.sym) - 1; i >= 0; i-- {
		m := p.sym[i]
		if m.SymmetricDim() == n {
			p.sym = append(p.sym[:i], p.sym[i+1:]...)
			m.Zero()
			return m
		}
	}
	return mat.NewSymDense(n, nil)
}

// PutSymDense returns a symmetric matrix to the pool.
func (p *MatrixPool) PutSymDense(m *mat.SymDense) {
	p.sym = append(p.sym, m)
}

// GetVecDense returns a pooled vector of length n, or a fresh one.
func (p *MatrixPool) GetVecDense(n int) *mat.VecDense {
	for i := len(p.vec) - 1; i >= 0; i-- {
		v := p.vec[i]
		if v.Len() == n {
			p.vec = append(p.vec[:i], p.vec[i+1:]...)
			v.Zero()
			return v
		}
	}
	return mat.NewVecDense(n, nil)
}

// PutVecDense returns a vector to the pool.
func (p *MatrixPool) PutVecDense(v *mat.VecDense) {
	p.vec = append(p.vec, v)
}
