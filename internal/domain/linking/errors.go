package linking

import "errors"

var (
	ErrTokenNotFound          = errors.New("linking token not found")
	ErrTokenExpired           = errors.New("linking token expired")
	ErrAlreadyLinked          = errors.New("linking token already linked")
	ErrConcurrentModification = errors.New("linking token was modified concurrently")
)
