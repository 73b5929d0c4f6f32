package normalizer

// Field is a validator attribute that is either a constant or a function of
// the evaluation context. The zero Field is unset.
type Field[T any] struct {
	set   bool
	value T
	fn    func(*Context) T
}

// Const returns a Field that always resolves to v.
func Const[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

// Computed returns a Field resolved by calling fn at each evaluation site.
func Computed[T any](fn func(*Context) T) Field[T] {
	return Field[T]{set: fn != nil, fn: fn}
}

// IsSet reports whether the field was declared.
func (f Field[T]) IsSet() bool {
	return f.set
}

// Resolve returns the field's value for ctx. An unset field resolves to the
// zero value of T.
func (f Field[T]) Resolve(ctx *Context) T {
	if f.fn != nil {
		return f.fn(ctx)
	}
	return f.value
}

// ResolveOr returns the field's value for ctx, or def when the field is unset.
func (f Field[T]) ResolveOr(ctx *Context, def T) T {
	if !f.set {
		return def
	}
	return f.Resolve(ctx)
}
