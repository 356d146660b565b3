// Package recording writes simulation audit data into a SQLite file so
// that runs can be inspected after the server exits. The engine never
// reads this data back; it is an export, not persistence.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// SQLite driver for the recording database.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A DataRecorder is a backend that can record and store rows derived from
// flat structs.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry. It panics if any field is not a scalar or string.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table created earlier.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

// New creates a DataRecorder backed by the SQLite file at path (the
// ".sqlite3" suffix is appended). An empty path picks a unique name. The
// recorder flushes any buffered rows at process exit.
func New(path string) DataRecorder {
	w := &sqliteWriter{
		fileName:  path,
		batchSize: 1024,
		tables:    make(map[string]*table),
	}

	w.open()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	entryType reflect.Type
	pending   []any
}

type sqliteWriter struct {
	*sql.DB

	fileName  string
	tables    map[string]*table
	batchSize int
	buffered  int
}

func (w *sqliteWriter) open() {
	if w.fileName == "" {
		w.fileName = "memsim_run_" + xid.New().String()
	}

	fileName := w.fileName + ".sqlite3"
	if _, err := os.Stat(fileName); err == nil {
		panic(fmt.Errorf("recording file %s already exists", fileName))
	}

	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Recording simulation data to %s\n", fileName)

	w.DB = db
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	mustBeFlatStruct(sampleEntry)

	columns := strings.Join(structs.Names(sampleEntry), ",\n\t")
	w.mustExecute("CREATE TABLE " + tableName + " (\n\t" + columns + "\n);")

	w.tables[tableName] = &table{
		entryType: reflect.TypeOf(sampleEntry),
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, found := w.tables[tableName]
	if !found {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.pending = append(t.pending, entry)

	w.buffered++
	if w.buffered >= w.batchSize {
		w.Flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	return names
}

func (w *sqliteWriter) Flush() {
	if w.buffered == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range w.tables {
		if len(t.pending) == 0 {
			continue
		}

		stmt := w.prepareInsert(tableName, t.pending[0])

		for _, entry := range t.pending {
			values := reflect.ValueOf(entry)

			row := make([]any, 0, values.NumField())
			for i := 0; i < values.NumField(); i++ {
				row = append(row, values.Field(i).Interface())
			}

			if _, err := stmt.Exec(row...); err != nil {
				panic(err)
			}
		}

		t.pending = nil
		stmt.Close()
	}

	w.buffered = 0
}

func (w *sqliteWriter) prepareInsert(tableName string, entry any) *sql.Stmt {
	placeholders := make([]string, len(structs.Names(entry)))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := w.Prepare("INSERT INTO " + tableName + " VALUES (" +
		strings.Join(placeholders, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}

func (w *sqliteWriter) mustExecute(query string) {
	if _, err := w.Exec(query); err != nil {
		panic(fmt.Errorf("failed to execute %q: %w", query, err))
	}
}

func mustBeFlatStruct(entry any) {
	t := reflect.TypeOf(entry)

	for i := 0; i < t.NumField(); i++ {
		switch t.Field(i).Type.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64,
			reflect.String:
			continue
		default:
			panic(fmt.Sprintf("field %s of %s cannot be recorded",
				t.Field(i).Name, t.Name()))
		}
	}
}
