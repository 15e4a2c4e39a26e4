package mapping

import "errors"

var (
	ErrMappingNotFound = errors.New("price to role mapping not found")
)
