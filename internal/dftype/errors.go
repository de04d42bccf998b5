package dftype

import "fmt"

// TypeMismatchError reports that src cannot be copied/assigned into dst.
type TypeMismatchError struct {
	Src, Dst *Type
	Context  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch in %s: cannot assign %s to %s", e.Context, e.Src, e.Dst)
}

// CheckCopy asserts that src is assignable to dst, returning a
// *TypeMismatchError otherwise. context names the call site for
// diagnostics (e.g. "struct field f", "array element").
func CheckCopy(src, dst *Type, context string) error {
	if !AssignableTo(src, dst) {
		return &TypeMismatchError{Src: src, Dst: dst, Context: context}
	}
	return nil
}
