package http

import "errors"

var (
	errInvalidLimit = errors.New("limit must be a positive integer")
	errInvalidLevel = errors.New(`level must be one of "families", "sub_families", "products"`)
	errInvalidMonth = errors.New(`month must be formatted "YYYY-MM"`)
)
