package store

// Option applies a configuration option to the Mongo store.
type Option func(*Mongo)

// WithCollectionPrefix prefixes all collection names, letting several
// deployments share one database.
func WithCollectionPrefix(prefix string) Option {
	return func(s *Mongo) {
		s.prefix = prefix
	}
}
