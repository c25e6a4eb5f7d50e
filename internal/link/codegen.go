package link

import "github.com/jaevor/go-nanoid"

// CodeGenerator produces short, URL-safe, unpredictable codes. Generators
// must be safe for concurrent use without coordination.
type CodeGenerator func() string

// NewCodeGenerator returns a nanoid-backed code generator producing codes of
// the given length. Collisions are negligible but not impossible; the create
// path handles them with a bounded regenerate loop.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}
