package dialect

import "slices"

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

var names = []string{MySQL, Postgres, SQLite}

// Supported reports if name is a known dialect.
func Supported(name string) bool {
	return slices.Contains(names, name)
}

// Names returns the known dialect names, sorted.
func Names() []string {
	return slices.Clone(names)
}
