package service

import "errors"

// Errores de validación: el adapter los traduce a mensajes para el usuario.
var (
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrUnknownGame     = errors.New("unknown game")
	ErrDuplicateRoom   = errors.New("room already registered")
	ErrIndexOutOfRange = errors.New("room index out of range")
	ErrRoomNotFound    = errors.New("room not found")
)
