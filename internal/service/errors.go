package service

import "errors"

var (
	ErrNoHistory          = errors.New("error no price at reference date")
	ErrNotEnoughIndexData = errors.New("error not enough index data")
	ErrRunInProgress      = errors.New("error report run already in progress")
)
