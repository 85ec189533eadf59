package config

// FakeStore is an in-memory Store for tests.
type FakeStore struct {
	// Config is returned by Load and replaced by Save.
	Config Config
	// Saves counts successful Save calls.
	Saves int

	LoadError error
	SaveError error
}

// NewFakeStore returns a FakeStore holding c.
func NewFakeStore(c Config) *FakeStore {
	return &FakeStore{Config: c}
}

// Load implements Store.
func (f *FakeStore) Load() (Config, error) {
	if f.LoadError != nil {
		return Config{}, f.LoadError
	}
	return f.Config, nil
}

// Save implements Store.
func (f *FakeStore) Save(c Config) error {
	if f.SaveError != nil {
		return f.SaveError
	}
	f.Config = Normalize(c)
	f.Saves++
	return nil
}
