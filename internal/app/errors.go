package service

import (
	"errors"
	"fmt"

	"github.com/okian/bestxi/internal/adapters/repository"
)

// Sentinel errors returned by the Service.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIllegalFormation = errors.New("illegal formation")
	ErrUnknownTeam      = fmt.Errorf("unknown team: %w", repository.ErrNotFound)
)
