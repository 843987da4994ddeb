package pool

// Pool hands out byte slices carved from a shared block. Slices are
// never reused, a full block is simply replaced, so callers may keep
// what they get.
type Pool struct {
	pos int
	buf []byte
}

const maxpoolsize = 500 * 1024

// Get gets a byte slice of specific size, sizes beyond a block are
// allocated on their own
func (pool *Pool) Get(size int) []byte {
	if size > maxpoolsize/4 {
		return make([]byte, size)
	}
	if maxpoolsize-pool.pos < size {
		pool.pos = 0
		pool.buf = make([]byte, maxpoolsize)
	}
	b := pool.buf[pool.pos : pool.pos+size : pool.pos+size]
	pool.pos += size
	return b
}

// NewPool return a Pool
func NewPool() *Pool {
	return &Pool{
		buf: make([]byte, maxpoolsize),
	}
}
