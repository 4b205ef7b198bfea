package cacheinfra

// NewStore builds the backend selected by cfg.Backend. Networked backends
// are wrapped with a circuit breaker when cfg.Breaker is set.
func NewStore(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendRedis:
		store, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Breaker == nil {
			return store, nil
		}
		return WithBreaker("menu-cache-redis", store, *cfg.Breaker), nil
	default:
		store, err := NewSturdycStore(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
