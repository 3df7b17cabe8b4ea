// Package dataset loads a CSV file into a per-session SQLite staging
// database and exposes typed, read-only access to its columns. The dataset
// is immutable for the lifetime of the session; every downstream component
// reads through the accessors here.
package dataset

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Dataset is a loaded, immutable rectangular table backed by SQLite.
type Dataset struct {
	ID       string
	Name     string
	Table    string
	Columns  []string
	ColTypes map[string]string // column -> INTEGER | REAL | TEXT
	RowCount int

	db     *sql.DB
	dbPath string
	logger func(string)
}

// LoadFile reads a CSV file from disk and stages it.
func LoadFile(path string, cacheDir string, logFunc func(string)) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %v", err)
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return Load(name, raw, cacheDir, logFunc)
}

// Load parses raw CSV bytes, infers a column schema, and imports the rows
// into a fresh SQLite database under cacheDir.
func Load(name string, raw []byte, cacheDir string, logFunc func(string)) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in csv")
	}

	id := uuid.New().String()
	dbDir := filepath.Join(cacheDir, "sources", id)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}
	dbPath := filepath.Join(dbDir, "data.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %v", err)
	}

	tableName := sanitizeName(name)
	ds := &Dataset{
		ID:     id,
		Name:   name,
		Table:  tableName,
		db:     db,
		dbPath: dbPath,
		logger: logFunc,
	}

	if err := ds.importRows(rows); err != nil {
		db.Close()
		_ = os.RemoveAll(dbDir)
		return nil, err
	}

	ds.log(fmt.Sprintf("[DATASET] Loaded %q: %d rows, %d columns", name, ds.RowCount, len(ds.Columns)))
	return ds, nil
}

func (d *Dataset) log(msg string) {
	if d.logger != nil {
		d.logger(msg)
	}
}

// Close releases the underlying database handle.
func (d *Dataset) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// HasColumn reports whether name is an actual column of the dataset.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// importRows performs schema inference and data import for the parsed rows.
func (d *Dataset) importRows(rows [][]string) error {
	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	if maxCols == 0 {
		return fmt.Errorf("no valid columns found")
	}

	hasHeader := isHeaderRow(rows[0])
	dataStart := 0
	if hasHeader {
		dataStart = 1
	}

	// Infer column types from a sample of data rows.
	colTypes := make([]string, maxCols)
	sampleEnd := dataStart + 10
	if sampleEnd > len(rows) {
		sampleEnd = len(rows)
	}
	for i := 0; i < maxCols; i++ {
		current := "INTEGER"
		seen := false
		for r := dataStart; r < sampleEnd; r++ {
			if i >= len(rows[r]) || strings.TrimSpace(rows[r][i]) == "" {
				continue
			}
			seen = true
			t := inferColumnType(strings.TrimSpace(rows[r][i]))
			if t == "TEXT" {
				current = "TEXT"
				break
			}
			if t == "REAL" && current == "INTEGER" {
				current = "REAL"
			}
		}
		if !seen {
			current = "TEXT"
		}
		colTypes[i] = current
	}

	// Build unique, sanitized column names.
	headers := make([]string, maxCols)
	usedNames := make(map[string]int)
	for i := 0; i < maxCols; i++ {
		h := ""
		if hasHeader && i < len(rows[0]) {
			h = sanitizeName(rows[0][i])
		}
		if h == "" || h == "unknown" {
			h = fmt.Sprintf("field_%d_%s", i+1, strings.ToLower(colTypes[i]))
		}
		origH := h
		for usedNames[strings.ToLower(h)] > 0 {
			usedNames[origH]++
			h = fmt.Sprintf("%s_%d", origH, usedNames[origH])
		}
		usedNames[strings.ToLower(h)]++
		headers[i] = h
	}

	createSQL := fmt.Sprintf("CREATE TABLE `%s` (", d.Table)
	placeholders := make([]string, maxCols)
	for i, colName := range headers {
		createSQL += fmt.Sprintf("`%s` %s", colName, colTypes[i])
		if i < maxCols-1 {
			createSQL += ", "
		}
		placeholders[i] = "?"
	}
	createSQL += ");"

	if _, err := d.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %v", d.Table, err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	insertSQL := fmt.Sprintf("INSERT INTO `%s` VALUES (%s)", d.Table, strings.Join(placeholders, ","))
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	inserted := 0
	for i := dataStart; i < len(rows); i++ {
		row := rows[i]
		vals := make([]interface{}, maxCols)
		for j := 0; j < maxCols; j++ {
			var cell string
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if cell == "" {
				vals[j] = nil
				continue
			}
			switch colTypes[j] {
			case "INTEGER":
				if iv, err := strconv.ParseInt(cell, 10, 64); err == nil {
					vals[j] = iv
				} else {
					vals[j] = nil
				}
			case "REAL":
				if fv, err := strconv.ParseFloat(cell, 64); err == nil {
					vals[j] = fv
				} else {
					vals[j] = nil
				}
			default:
				vals[j] = cell
			}
		}
		if _, err := stmt.Exec(vals...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %v", i+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	d.Columns = headers
	d.ColTypes = make(map[string]string, maxCols)
	for i, h := range headers {
		d.ColTypes[h] = colTypes[i]
	}
	d.RowCount = inserted
	return nil
}

// StringValues returns the non-null values of a column as strings, in row
// order.
func (d *Dataset) StringValues(col string) ([]string, error) {
	if !d.HasColumn(col) {
		return nil, fmt.Errorf("no such column: %s", col)
	}
	rows, err := d.db.Query(fmt.Sprintf("SELECT `%s` FROM `%s` WHERE `%s` IS NOT NULL ORDER BY rowid", col, d.Table, col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FloatValues returns the non-null values of a column as float64, skipping
// values that do not parse as numbers.
func (d *Dataset) FloatValues(col string) ([]float64, error) {
	raw, err := d.StringValues(col)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, v := range raw {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// MissingCount returns the number of null cells in a column.
func (d *Dataset) MissingCount(col string) (int, error) {
	if !d.HasColumn(col) {
		return 0, fmt.Errorf("no such column: %s", col)
	}
	var n int
	err := d.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM `%s` WHERE `%s` IS NULL", d.Table, col)).Scan(&n)
	return n, err
}

// Pair is one (x, y) observation read from two columns of the same row.
type Pair struct {
	X string
	Y string
}

// Pairs returns the (x, y) values of two columns for every row where both
// are non-null, in row order.
func (d *Dataset) Pairs(xCol, yCol string) ([]Pair, error) {
	if !d.HasColumn(xCol) {
		return nil, fmt.Errorf("no such column: %s", xCol)
	}
	if !d.HasColumn(yCol) {
		return nil, fmt.Errorf("no such column: %s", yCol)
	}
	q := fmt.Sprintf("SELECT `%s`, `%s` FROM `%s` WHERE `%s` IS NOT NULL AND `%s` IS NOT NULL ORDER BY rowid",
		xCol, yCol, d.Table, xCol, yCol)
	rows, err := d.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SampleCSV returns up to limit uniformly spaced rows serialized as CSV with
// a header line. The sampling is deterministic so the same dataset always
// yields the same excerpt.
func (d *Dataset) SampleCSV(limit int) (string, error) {
	if limit <= 0 || d.RowCount == 0 {
		return "", nil
	}
	stride := 1
	if d.RowCount > limit {
		stride = d.RowCount / limit
	}

	cols := "`" + strings.Join(d.Columns, "`, `") + "`"
	q := fmt.Sprintf("SELECT %s FROM `%s` WHERE (rowid - 1) %% %d = 0 ORDER BY rowid LIMIT %d",
		cols, d.Table, stride, limit)
	rows, err := d.db.Query(q)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(d.Columns); err != nil {
		return "", err
	}

	n := len(d.Columns)
	for rows.Next() {
		raw := make([]sql.NullString, n)
		ptrs := make([]interface{}, n)
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		record := make([]string, n)
		for i, v := range raw {
			if v.Valid {
				record[i] = v.String
			}
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	w.Flush()
	return buf.String(), w.Error()
}

// inferColumnType maps a single cell to the narrowest SQLite type.
func inferColumnType(val string) string {
	if val == "" {
		return "TEXT"
	}
	if _, err := strconv.ParseInt(val, 10, 64); err == nil {
		return "INTEGER"
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return "REAL"
	}
	return "TEXT"
}

// isHeaderRow checks if the row is likely a header row
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if cell == "" {
			continue
		}
		// If it's a number, it's likely data, not a header
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return false
		}
	}
	return true
}

// sanitizeName keeps letters, digits and underscores so the result is a safe
// SQL identifier; everything else becomes an underscore.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		} else if r > 127 {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}

	name = result.String()
	if name == "" {
		return "unknown"
	}
	return name
}
