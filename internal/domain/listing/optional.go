package listing

type presence uint8

const (
	unset presence = iota
	null
	present
)

// Optional is a three-state form value: Unset (key absent), Null (key
// present, blank value for a nullable column) or a value.
type Optional[T any] struct {
	state presence
	value T
}

func Unset[T any]() Optional[T] { return Optional[T]{} }

func Null[T any]() Optional[T] { return Optional[T]{state: null} }

func Some[T any](v T) Optional[T] { return Optional[T]{state: present, value: v} }

func (o Optional[T]) IsSet() bool { return o.state != unset }

func (o Optional[T]) IsNull() bool { return o.state == null }

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == present
}

// Ptr is nil for Unset and Null.
func (o Optional[T]) Ptr() *T {
	if o.state != present {
		return nil
	}
	v := o.value
	return &v
}

// Assign writes a value into dst; Unset and Null leave it alone.
func (o Optional[T]) Assign(dst *T) {
	if o.state == present {
		*dst = o.value
	}
}

// AssignPtr writes into a nullable destination: Unset leaves it, Null
// clears it, a value replaces it.
func (o Optional[T]) AssignPtr(dst **T) {
	switch o.state {
	case null:
		*dst = nil
	case present:
		*dst = o.Ptr()
	}
}
