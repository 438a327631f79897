package sqlite

import (
	"database/sql/driver"
	"strings"

	moderncsqlite "modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode-aware lowercase function. SQLite's
// built-in lower() only folds ASCII, so search terms lowercased in Go would
// never match values like "Émile" or "Über".
const foldFunc = "unicode_lower"

// Registration is process-wide and applies to every connection opened
// afterwards, so it happens once before any NewDB call.
func init() {
	moderncsqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, unicodeLower)
}

func unicodeLower(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
