package bytebuf

import "errors"

// With opens name, runs fn on the buffer and releases it on every exit path.
// The buffer, and anything decoded from it, must not be used after fn
// returns.
func With(name string, fn func(*Buffer) error) (err error) {
	buf, err := Open(name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, buf.Close())
	}()
	return fn(buf)
}
