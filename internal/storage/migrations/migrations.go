// Package migrations holds the embedded schema of every SQL backend.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var files embed.FS

// Migration is one schema file. Version is the file name without extension,
// so lexical order is apply order.
type Migration struct {
	Version string
	SQL     string
}

// Postgres returns the Postgres schema in apply order.
func Postgres() ([]Migration, error) {
	return load(files, "postgres")
}

// Clickhouse returns the ClickHouse schema in apply order.
func Clickhouse() ([]Migration, error) {
	return load(files, "clickhouse")
}

func load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dir, err)
	}

	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{Version: strings.TrimSuffix(name, ".sql"), SQL: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Statements splits the migration on semicolons that end a statement.
// Semicolons inside quoted literals and comments do not split, and comment-only
// chunks are dropped. Drivers without multi-statement Exec apply these one by one.
func (m Migration) Statements() []string {
	var (
		stmts []string
		cur   strings.Builder
		code  bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" && code {
			stmts = append(stmts, s)
		}
		cur.Reset()
		code = false
	}

	sql := m.SQL
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				i = len(sql)
				continue
			}
			i += end
			cur.WriteByte('\n')
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = len(sql)
				continue
			}
			i += end + 3
			cur.WriteByte(' ')
		case ch == '\'' || ch == '"' || ch == '`':
			j := i + 1
			for j < len(sql) {
				if sql[j] == '\\' {
					j += 2
					continue
				}
				if sql[j] == ch {
					if j+1 < len(sql) && sql[j+1] == ch {
						j += 2
						continue
					}
					break
				}
				j++
			}
			if j >= len(sql) {
				j = len(sql) - 1
			}
			cur.WriteString(sql[i : j+1])
			code = true
			i = j
		case ch == ';':
			flush()
		default:
			cur.WriteByte(ch)
			if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
				code = true
			}
		}
	}
	flush()
	return stmts
}
