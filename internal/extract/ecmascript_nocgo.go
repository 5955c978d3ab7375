//go:build !cgo

package extract

import "context"

// ECMAScript is unavailable without cgo; every call reports ErrNoCGO.
type ECMAScript struct{}

// NewECMAScript creates the stub extractor.
func NewECMAScript() *ECMAScript {
	return &ECMAScript{}
}

// Available reports whether ECMAScript extraction is compiled in.
func Available() bool {
	return false
}

// ExtractSource returns ErrNoCGO.
func (e *ECMAScript) ExtractSource(ctx context.Context, rel string, src []byte) (*FileResult, error) {
	return nil, ErrNoCGO
}
