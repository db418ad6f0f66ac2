package repo

import "errors"

var ErrNotFound = errors.New("not found")
var ErrAlreadyOwned = errors.New("already owned")
var ErrNotOwned = errors.New("not owned")
var ErrInsufficientFunds = errors.New("insufficient funds")
