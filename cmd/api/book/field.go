package book

type fieldState uint8

const (
	fieldUnchanged fieldState = iota
	fieldCleared
	fieldSet
)

// Field carries an optional value through a partial update.
// The zero value is Unchanged: the field was not submitted at all.
type Field[T any] struct {
	state fieldState
	value T
}

func Unchanged[T any]() Field[T] {
	return Field[T]{}
}

func Cleared[T any]() Field[T] {
	return Field[T]{state: fieldCleared}
}

func Set[T any](v T) Field[T] {
	return Field[T]{state: fieldSet, value: v}
}

func (f Field[T]) IsUnchanged() bool { return f.state == fieldUnchanged }
func (f Field[T]) IsCleared() bool   { return f.state == fieldCleared }
func (f Field[T]) IsSet() bool       { return f.state == fieldSet }

/* Returns the value and true when the field was set. */
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == fieldSet
}

/* Returns a pointer to the value when set, nil otherwise. */
func (f Field[T]) Ptr() *T {
	if f.state != fieldSet {
		return nil
	}
	v := f.value
	return &v
}

/* Applies the field onto a nullable destination. */
func (f Field[T]) applyTo(dst **T) {
	switch f.state {
	case fieldCleared:
		*dst = nil
	case fieldSet:
		*dst = f.Ptr()
	}
}
