package postgres

import "fmt"

// TableNames holds environment-prefixed table names. The prefix is
// interpolated into SQL before it reaches the database, so each environment
// gets its own set of statements.
type TableNames struct {
	Documents string
	Versions  string
	Workflows string
	History   string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Versions:  fmt.Sprintf("%sdocument_versions", prefix),
		Workflows: fmt.Sprintf("%sdocument_workflows", prefix),
		History:   fmt.Sprintf("%sworkflow_history", prefix),
	}
}
