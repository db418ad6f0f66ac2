package ctrl

import "errors"

var ErrNotFound = errors.New("not found")
var ErrNoNickname = errors.New("no nickname")
var ErrNotLoggedIn = errors.New("not logged in")
var ErrItemNotFound = errors.New("item not found")
var ErrAlreadyOwned = errors.New("already owned")
var ErrNotOwned = errors.New("not owned")
var ErrInsufficientFunds = errors.New("not enough credits")
