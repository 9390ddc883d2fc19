package asset

import "errors"

var ErrNotCached = errors.New("alias not cached")
