package dataset

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func mustProfile(tb rapid.TB, ds *Dataset) *SchemaSummary {
	tb.Helper()
	schema, err := Profile(ds)
	if err != nil {
		tb.Fatalf("Profile failed: %v", err)
	}
	return schema
}

func loadTestDataset(t *testing.T, csv string) *Dataset {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "divedata_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	ds, err := Load("test_data", []byte(csv), tempDir, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestLoad_BasicCSV(t *testing.T) {
	ds := loadTestDataset(t, "date,region,revenue\n2024-01-02,north,100\n2024-01-01,south,250.5\n2024-01-03,north,75\n")

	if ds.RowCount != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.RowCount)
	}
	if len(ds.Columns) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(ds.Columns))
	}
	if ds.Columns[0] != "date" || ds.Columns[1] != "region" || ds.Columns[2] != "revenue" {
		t.Errorf("Unexpected column order: %v", ds.Columns)
	}
	if ds.ColTypes["revenue"] != "REAL" {
		t.Errorf("Expected revenue to be REAL, got %s", ds.ColTypes["revenue"])
	}
	if ds.ColTypes["region"] != "TEXT" {
		t.Errorf("Expected region to be TEXT, got %s", ds.ColTypes["region"])
	}
}

func TestLoad_HeaderlessCSV(t *testing.T) {
	ds := loadTestDataset(t, "1,alpha\n2,beta\n3,gamma\n")

	if ds.RowCount != 3 {
		t.Errorf("Expected 3 data rows, got %d", ds.RowCount)
	}
	for _, col := range ds.Columns {
		if !strings.HasPrefix(col, "field_") {
			t.Errorf("Expected generated field name, got %s", col)
		}
	}
}

func TestLoad_DuplicateHeaders(t *testing.T) {
	ds := loadTestDataset(t, "value,value,Value\na,b,c\n")

	seen := map[string]bool{}
	for _, col := range ds.Columns {
		key := strings.ToLower(col)
		if seen[key] {
			t.Errorf("Duplicate column name after import: %s", col)
		}
		seen[key] = true
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "divedata_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	if _, err := Load("empty", []byte(""), tempDir, nil); err == nil {
		t.Error("Expected error for empty CSV")
	}
}

func TestStringValues_SkipsNulls(t *testing.T) {
	ds := loadTestDataset(t, "name,score\nalice,10\nbob,\ncarol,30\n")

	values, err := ds.StringValues("score")
	if err != nil {
		t.Fatalf("StringValues failed: %v", err)
	}
	if len(values) != 2 {
		t.Errorf("Expected 2 non-null values, got %d: %v", len(values), values)
	}

	missing, err := ds.MissingCount("score")
	if err != nil {
		t.Fatalf("MissingCount failed: %v", err)
	}
	if missing != 1 {
		t.Errorf("Expected 1 missing, got %d", missing)
	}
}

func TestStringValues_UnknownColumn(t *testing.T) {
	ds := loadTestDataset(t, "a,b\n1,2\n")

	if _, err := ds.StringValues("nope"); err == nil {
		t.Error("Expected error for unknown column")
	}
}

func TestFloatValues(t *testing.T) {
	ds := loadTestDataset(t, "v\n1.5\n2.5\n3\n")

	values, err := ds.FloatValues("v")
	if err != nil {
		t.Fatalf("FloatValues failed: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(values))
	}
	if values[0] != 1.5 || values[2] != 3 {
		t.Errorf("Unexpected values: %v", values)
	}
}

func TestPairs_RowOrderAndNullFiltering(t *testing.T) {
	ds := loadTestDataset(t, "x,y\nc,1\na,\nb,3\n")

	pairs, err := ds.Pairs("x", "y")
	if err != nil {
		t.Fatalf("Pairs failed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs (null y dropped), got %d", len(pairs))
	}
	if pairs[0].X != "c" || pairs[1].X != "b" {
		t.Errorf("Pairs not in row order: %v", pairs)
	}
}

func TestSampleCSV_Deterministic(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id,v\n")
	for i := 0; i < 100; i++ {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(",")
		sb.WriteString(strconv.Itoa(i * 2))
		sb.WriteString("\n")
	}
	ds := loadTestDataset(t, sb.String())

	first, err := ds.SampleCSV(10)
	if err != nil {
		t.Fatalf("SampleCSV failed: %v", err)
	}
	second, err := ds.SampleCSV(10)
	if err != nil {
		t.Fatalf("SampleCSV failed: %v", err)
	}
	if first != second {
		t.Error("SampleCSV should be deterministic for the same dataset")
	}

	lines := strings.Split(strings.TrimSpace(first), "\n")
	if len(lines) > 11 { // header + at most 10 rows
		t.Errorf("Expected at most 11 lines, got %d", len(lines))
	}
	if lines[0] != "id,v" {
		t.Errorf("Expected header line, got %q", lines[0])
	}
}
