package broker

import "errors"

var (
	ErrDuplicateSymbol  = errors.New("symbol already configured")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrAccountNotFound  = errors.New("account does not exist")
	ErrUnknownSymbol    = errors.New("symbol not in market")
)
