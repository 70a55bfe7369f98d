package user

// User is an operator account. Accounts are created out of band; the API
// only authenticates them.
type User struct {
	ID             int64  `db:"id"`
	Username       string `db:"username"`
	HashedPassword string `db:"hashed_password"`
}
