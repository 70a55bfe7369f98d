package user

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
)

func mapUserDBError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_username_key" {
		return ErrUsernameTaken
	}
	return err
}
