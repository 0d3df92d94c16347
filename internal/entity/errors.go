package entity

import "errors"

var (
	ErrForbidden          = errors.New("forbidden: access denied")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTaskData    = errors.New("invalid task data")
	ErrInvalidUserData    = errors.New("invalid user data")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoPendingStatus    = errors.New("no pending status change to approve")
	ErrActiveTasks        = errors.New("cannot delete account while having active tasks")
)
