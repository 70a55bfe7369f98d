package category

// Fixed set of gallery categories. The same set is enforced by a check
// constraint on the categories table.
const (
	Wedding  = "wedding"
	Portrait = "portrait"
	Family   = "family"
	Blog     = "blog"
)

// Category groups events by shoot type
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
