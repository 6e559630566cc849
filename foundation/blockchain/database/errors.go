package database

import "errors"

// errShortBuffer is returned internally when a decode reads past the end
// of the supplied bytes; callers see it wrapped with fmt.Errorf naming the
// field being decoded, not as a chainerr kind.
var errShortBuffer = errors.New("database: unexpected end of buffer")
