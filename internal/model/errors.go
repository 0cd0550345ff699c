package model

import (
	"errors"
)

var (
	ErrNoExo      = errors.New("no exercise found")
	ErrNoSources  = errors.New("exercise has no source files")
	ErrInvalidExo = errors.New("invalid exercise")
)
