package errors

import "fmt"

var (
	ErrInvalidMessage     = fmt.Errorf("invalid message")
	ErrPersistence        = fmt.Errorf("message persistence failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles  = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnsupportedAsset   = fmt.Errorf("unsupported asset")
)
