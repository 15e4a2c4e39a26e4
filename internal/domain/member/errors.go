package member

import "errors"

var (
	ErrMemberNotFound         = errors.New("member not found")
	ErrAlreadyLinked          = errors.New("member already linked to a discord user")
	ErrConcurrentModification = errors.New("member was modified concurrently")
)
