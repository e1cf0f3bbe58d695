package loader

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/treeselect/pkg/model"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sqliteRow is one record of the options table.
type sqliteRow struct {
	id       string
	parentID sql.NullString
	value    sql.NullString
	label    string
	disabled bool
	group    sql.NullString
	position int64
}

// LoadSQLite reads an option tree from table in the SQLite database at path.
// The table holds one row per node:
//
//	id TEXT, parent_id TEXT NULL, value TEXT NULL, label TEXT,
//	disabled INTEGER, grp TEXT NULL, position INTEGER
//
// Siblings are ordered by position. Rows whose parent is missing are
// treated as roots; rows caught in a parent cycle are unreachable and dropped.
func LoadSQLite(ctx context.Context, path, table string) ([]model.Option, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`
		SELECT id, parent_id, value, label, COALESCE(disabled, 0), grp, COALESCE(position, 0)
		FROM %s
		ORDER BY position, rowid
	`, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var records []sqliteRow
	for rows.Next() {
		var r sqliteRow
		if err := rows.Scan(&r.id, &r.parentID, &r.value, &r.label, &r.disabled, &r.group, &r.position); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}

	opts := buildTree(records)
	if err := model.ValidateTree(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// buildTree links records into a tree. records must already be in sibling
// order.
func buildTree(records []sqliteRow) []model.Option {
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.id] = true
	}

	children := make(map[string][]sqliteRow)
	var roots []sqliteRow
	for _, r := range records {
		if r.parentID.Valid && r.parentID.String != r.id && known[r.parentID.String] {
			children[r.parentID.String] = append(children[r.parentID.String], r)
			continue
		}
		roots = append(roots, r)
	}

	var build func(rs []sqliteRow) []model.Option
	build = func(rs []sqliteRow) []model.Option {
		out := make([]model.Option, 0, len(rs))
		for _, r := range rs {
			o := model.Option{
				Label:    r.label,
				Disabled: r.disabled,
			}
			if r.value.Valid {
				o.Value = model.StringValue(r.value.String)
			}
			if r.group.Valid {
				o.Group = r.group.String
			}
			if kids := children[r.id]; len(kids) > 0 {
				o.Children = build(kids)
			}
			out = append(out, o)
		}
		return out
	}
	return build(roots)
}

// sqliteDSN builds a read-only file URI for path. The path is made absolute
// and escaped so '?', '#' and '%' in file names stay part of the path.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "mode=ro&_pragma=busy_timeout(5000)",
	}
	return u.String(), nil
}
