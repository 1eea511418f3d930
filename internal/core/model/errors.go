package model

import "errors"

// Error kinds. Every one of them is fatal for the session.
var (
	ErrTerminalInit = errors.New("terminal init failed")
	ErrRender       = errors.New("render failed")
	ErrPersistence  = errors.New("history persistence failed")
)
