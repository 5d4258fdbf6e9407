package storage

// Value mirrors one key of a LocalStorage into a typed value.
type Value[T any] struct {
	store *LocalStorage
	key   string
}

// NewValue binds key of store to T.
func NewValue[T any](store *LocalStorage, key string) *Value[T] {
	return &Value[T]{store: store, key: key}
}

// Get returns the stored value. ok is false when the key is absent or
// holds something that does not decode into T.
func (v *Value[T]) Get() (val T, ok bool) {
	if err := v.store.Get(v.key, &val); err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// Set stores val and persists it.
func (v *Value[T]) Set(val T) error {
	return v.store.Set(v.key, val)
}

// Clear removes the key. Clearing an absent key is not an error.
func (v *Value[T]) Clear() error {
	_, err := v.store.Delete(v.key)
	return err
}
