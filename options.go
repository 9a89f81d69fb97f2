package bytetable

// ReleaseFunc releases the resources held by a stored value. See WithRelease
// for the ownership contract.
type ReleaseFunc func(value any)

// Option is a functional option for configuring tables.
type Option func(*tableConfig)

type tableConfig struct {
	capacity int // Initial bucket count; 0 selects defaultCapacity
	release  ReleaseFunc
}

func defaultTableConfig() *tableConfig {
	return &tableConfig{}
}

// WithCapacity sets the initial bucket count. A value of 0 (the default)
// selects the built-in default of 16 buckets. The count is used as given;
// powers of two keep the bucket modulo cheap but are not required.
// Negative values cause New to fail.
func WithCapacity(n int) Option {
	return func(c *tableConfig) {
		c.capacity = n
	}
}

// WithRelease registers a callback that releases a stored value's resources.
//
// Once configured, ownership of each value transfers to the table on a
// successful Put. The table then invokes the callback exactly once per value:
// when the value is overwritten by a Put with a different value, when its
// entry is removed, and for every remaining value on Clear or Close.
// Overwriting a key with the identical value reference does not trigger a
// release.
//
// Without this option the table never takes ownership of values and the
// caller remains responsible for them.
func WithRelease(fn ReleaseFunc) Option {
	return func(c *tableConfig) {
		c.release = fn
	}
}
