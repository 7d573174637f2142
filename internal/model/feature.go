package model

// FeatureCount is the fixed width of every feature vector.
const FeatureCount = 6

// FeatureVector is the numeric encoding of a flow used as model input:
// [source_fingerprint, dest_fingerprint, port, protocol_code, bytes, hour].
type FeatureVector [FeatureCount]float64

// Floats returns the vector as a freshly allocated slice, the shape the
// underlying ensemble library operates on.
func (v FeatureVector) Floats() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// Matrix converts a set of vectors into the row-major form expected by the
// ensemble's Fit and Predict calls.
func Matrix(vectors []FeatureVector) [][]float64 {
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		rows[i] = v.Floats()
	}
	return rows
}
