package loader

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vanderheijden86/treeselect/pkg/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func labels(opts []model.Option) []string {
	var out []string
	var walk func([]model.Option, string)
	walk = func(nodes []model.Option, prefix string) {
		for _, o := range nodes {
			out = append(out, prefix+o.Label)
			walk(o.Children, prefix+"  ")
		}
	}
	walk(opts, "")
	return out
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tech.json", `[
		{"value": "be", "label": "Backend", "children": [{"value": "go", "label": "Go"}]}
	]`)

	opts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Backend", "  Go"}, labels(opts)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fruit.yml", `
- label: Fruit
  group: fruit
- value: apple
  label: Apple
`)
	opts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(opts) != 2 || !opts[0].IsHeader() || !opts[1].Value.Equal(model.StringValue("apple")) {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestLoadFile_Unsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "options.txt", "apple")
	if _, err := LoadFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/options.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFile_InvalidTree(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", `[{"value": "x"}]`)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected validation error for unlabeled option")
	}
}

func TestLoadAll_KeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"value": "a", "label": "A"}]`)
	b := writeFile(t, dir, "b.yaml", "- value: b\n  label: B\n")
	c := writeFile(t, dir, "c.json", `[{"value": "c", "label": "C"}]`)

	opts, err := LoadAll(context.Background(), []string{c, a, b})
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, labels(opts)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAll_FailsOnAnyError(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"value": "a", "label": "A"}]`)
	bad := writeFile(t, dir, "bad.json", `{not json`)

	if _, err := LoadAll(context.Background(), []string{a, bad}); err == nil {
		t.Error("expected error from malformed file")
	}
}

func createOptionsDB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE options (
			id TEXT PRIMARY KEY, parent_id TEXT, value TEXT, label TEXT NOT NULL,
			disabled INTEGER, grp TEXT, position INTEGER
		)`,
		`INSERT INTO options VALUES ('1', NULL, 'be', 'Backend', 0, NULL, 1)`,
		`INSERT INTO options VALUES ('2', '1', 'java', 'Java', 1, NULL, 2)`,
		`INSERT INTO options VALUES ('3', '1', 'go', 'Go', 0, NULL, 1)`,
		`INSERT INTO options VALUES ('4', NULL, NULL, 'Languages', 0, 'lang', 0)`,
		`INSERT INTO options VALUES ('5', 'missing', 'orphan', 'Orphan', 0, NULL, 3)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.db")
	createOptionsDB(t, path)

	opts, err := LoadSQLite(context.Background(), path, "options")
	if err != nil {
		t.Fatalf("LoadSQLite failed: %v", err)
	}

	want := []string{"Languages", "Backend", "  Go", "  Java", "Orphan"}
	if diff := cmp.Diff(want, labels(opts)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if !opts[0].IsHeader() || !opts[0].Value.IsNone() {
		t.Errorf("expected unvalued group header first, got %+v", opts[0])
	}
	if !opts[1].Children[1].Disabled {
		t.Error("expected Java to be disabled")
	}
}

func TestLoadSQLite_ViaLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.db")
	createOptionsDB(t, path)

	opts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(opts) != 3 {
		t.Errorf("expected 3 roots, got %d", len(opts))
	}
}

func TestLoadSQLite_RejectsBadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.db")
	createOptionsDB(t, path)

	if _, err := LoadSQLite(context.Background(), path, "options; DROP TABLE options"); err == nil {
		t.Error("expected error for invalid table name")
	}
	if _, err := LoadSQLite(context.Background(), path, "nope"); err == nil {
		t.Error("expected error for missing table")
	}
}

func TestLoadAllFromTable(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "menu.db")
	createOptionsDB(t, db)
	yml := filepath.Join(dir, "extra.yaml")
	if err := os.WriteFile(yml, []byte("- value: x\n  label: Extra\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadAllFromTable(context.Background(), []string{yml, db}, "options")
	if err != nil {
		t.Fatalf("LoadAllFromTable failed: %v", err)
	}
	if len(opts) != 4 || opts[0].Label != "Extra" {
		t.Errorf("expected Extra followed by 3 sqlite roots, got %d roots", len(opts))
	}

	if _, err := LoadAllFromTable(context.Background(), []string{yml, db}, "nope"); err == nil {
		t.Error("expected error for missing table")
	}
}

func TestLoadSQLite_PathWithURIDelimiters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("'?' is not allowed in Windows file names")
	}
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.db")
	createOptionsDB(t, plain)
	odd := filepath.Join(dir, "menu?v=1#draft %20.db")
	if err := os.Rename(plain, odd); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadSQLite(context.Background(), odd, "options")
	if err != nil {
		t.Fatalf("LoadSQLite failed: %v", err)
	}
	if len(opts) != 3 {
		t.Errorf("expected 3 roots, got %d", len(opts))
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := sqliteDSN("/data/a?b#c.db")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dsn, "file:///") {
		t.Errorf("expected absolute file URI, got %q", dsn)
	}
	if !strings.Contains(dsn, "a%3Fb%23c.db") {
		t.Errorf("expected '?' and '#' escaped in the path, got %q", dsn)
	}
	if !strings.HasSuffix(dsn, "?mode=ro&_pragma=busy_timeout(5000)") {
		t.Errorf("expected read-only query, got %q", dsn)
	}
}
