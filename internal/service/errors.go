package service

import "errors"

// ErrNotJoined is returned for channel operations that require the
// connection to be in the channel's group.
var ErrNotJoined = errors.New("not joined to channel")
