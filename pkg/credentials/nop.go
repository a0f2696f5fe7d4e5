package credentials

// NopProvider always reports missing credentials. Useful when key
// persistence is optional.
type NopProvider struct{}

func (NopProvider) Get(ref Reference) (Value, error) { return Value{}, ErrNotFound }
func (NopProvider) Put(ref Reference, value []byte) (string, error) {
	return "", ErrUnsupported
}
func (NopProvider) Delete(ref Reference) error                     { return ErrUnsupported }
func (NopProvider) Describe(ref Reference) (map[string]any, error) { return nil, ErrNotFound }
