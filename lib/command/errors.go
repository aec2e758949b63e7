package command

import "errors"

var (
	// ErrInvalidCommand is returned when a frame is not an array of strings
	ErrInvalidCommand = errors.New("invalid command frame")
	// ErrWrongNumberOfArgs is returned when GET or SET has the wrong arity
	ErrWrongNumberOfArgs = errors.New("wrong number of arguments")
	// ErrUnknownCommand is returned by Apply for commands the server does not implement
	ErrUnknownCommand = errors.New("unknown command")
)
