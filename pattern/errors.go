package pattern

import "errors"

// ErrInvalidKind is returned by ParseKind for unknown kind names.
var ErrInvalidKind = errors.New("invalid registration kind")
