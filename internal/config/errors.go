package config

import "errors"

// ErrConfig marks bad settings, flags, or tokens. The CLI exits 2 on it.
var ErrConfig = errors.New("configuration error")
