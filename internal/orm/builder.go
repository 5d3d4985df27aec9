package orm

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// placeholderFor picks the bind-variable style for a driver name
func placeholderFor(driver string) squirrel.PlaceholderFormat {
	switch driver {
	case "postgres", "pgx", "pq":
		return squirrel.Dollar
	default:
		return squirrel.Question
	}
}

// selectStatement builds SELECT * FROM table [WHERE cond]. Rows are decoded
// positionally, so the physical column order of the table is the contract.
func selectStatement(driver, table string, where Condition) (string, []interface{}, error) {
	builder := squirrel.Select("*").
		From(table).
		PlaceholderFormat(placeholderFor(driver))

	if !where.IsZero() {
		builder = builder.Where(where.ToSqlizer())
	}

	return builder.ToSql()
}

// upsertStatement builds a single INSERT that falls back to overwriting every
// data column when a row with the same key columns already exists.
func upsertStatement(driver, table string, keys, data []Assignment) (string, []interface{}, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%s: no key columns declared", table)
	}

	columns := make([]string, 0, len(keys)+len(data))
	values := make([]interface{}, 0, len(keys)+len(data))
	keyNames := make([]string, 0, len(keys))

	for _, k := range keys {
		columns = append(columns, k.Column)
		values = append(values, k.Value)
		keyNames = append(keyNames, k.Column)
	}
	for _, d := range data {
		columns = append(columns, d.Column)
		values = append(values, d.Value)
	}

	onConflict := fmt.Sprintf("ON CONFLICT (%s)", strings.Join(keyNames, ", "))
	if len(data) > 0 {
		setParts := make([]string, 0, len(data))
		for _, d := range data {
			setParts = append(setParts, fmt.Sprintf("%s = excluded.%s", d.Column, d.Column))
		}
		onConflict += " DO UPDATE SET " + strings.Join(setParts, ", ")
	} else {
		onConflict += " DO NOTHING"
	}

	return squirrel.Insert(table).
		Columns(columns...).
		Values(values...).
		Suffix(onConflict).
		PlaceholderFormat(placeholderFor(driver)).
		ToSql()
}
