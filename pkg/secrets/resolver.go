package secrets

// SimpleResolver batches Get calls against a single provider.
type SimpleResolver struct {
	Provider Provider
}

var _ Resolver = (*SimpleResolver)(nil)

// Resolve fetches each reference and returns a map keyed by the exact
// reference. Resolution fails as a whole if any reference fails.
func (r SimpleResolver) Resolve(refs ...Reference) (map[Reference]SecretValue, error) {
	results := make(map[Reference]SecretValue, len(refs))
	if r.Provider == nil {
		return results, ErrUnsupported
	}
	for _, ref := range refs {
		val, err := r.Provider.Get(ref)
		if err != nil {
			return nil, err
		}
		results[ref] = val
	}
	return results, nil
}
