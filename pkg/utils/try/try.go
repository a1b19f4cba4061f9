package try

// something having method `Fatal`, like *testing.T or log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either wraps a pair of (T, error).
//
// When error is nil, the Either is "ok" and the T value is valid.
type Either[T any] interface {
	// Get returns the wrapped (value, error) pair.
	Get() (T, error)

	// OrFatal returns the value when the Either is "ok".
	//
	// Otherwise, it calls ftl.Fatal(err).
	// If ftl has a "Helper()" method (like *testing.T), that is called first.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value when the Either is "ok",
	// and the given default otherwise.
	OrDefault(T) T
}

type helperer interface {
	Helper()
}

type tryOk[T any] struct {
	val T
}

func (t tryOk[T]) Get() (T, error)   { return t.val, nil }
func (t tryOk[T]) OrFatal(Fataler) T { return t.val }
func (t tryOk[T]) OrDefault(T) T     { return t.val }

type tryNg[T any] struct {
	err error
}

func (t tryNg[T]) Get() (T, error) {
	return *new(T), t.err
}

func (t tryNg[T]) OrFatal(ftl Fataler) T {
	if h, ok := ftl.(helperer); ok {
		h.Helper()
	}
	ftl.Fatal(t.err)
	return *new(T)
}

func (t tryNg[T]) OrDefault(def T) T { return def }

// To wraps a (value, error) pair into an Either.
//
//	content := try.To(os.ReadFile(name)).OrFatal(t)
func To[T any](val T, err error) Either[T] {
	if err != nil {
		return tryNg[T]{err}
	}
	return tryOk[T]{val}
}
