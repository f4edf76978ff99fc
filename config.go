package ut369

// Config carries the options supplied to Start. SchedName selects the
// dispatch policy ("fcfs" or "rand"); Preemptive enables the periodic
// timer source; Verbose raises the default logger to LevelDebug.
type Config struct {
	SchedName  string
	Preemptive bool
	Verbose    bool
}

// Option configures a Config, using the functional-options pattern for
// optional knobs layered on top of a base struct.
type Option interface {
	applyConfig(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) applyConfig(c *Config) { f(c) }

// WithScheduler overrides SchedName.
func WithScheduler(name string) Option {
	return optionFunc(func(c *Config) { c.SchedName = name })
}

// WithPreemption overrides Preemptive.
func WithPreemption(enabled bool) Option {
	return optionFunc(func(c *Config) { c.Preemptive = enabled })
}

// WithVerbose overrides Verbose.
func WithVerbose(enabled bool) Option {
	return optionFunc(func(c *Config) { c.Verbose = enabled })
}

// resolveOptions applies opts on top of base, skipping nil options.
func resolveOptions(base Config, opts []Option) Config {
	cfg := base
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyConfig(&cfg)
	}
	return cfg
}
