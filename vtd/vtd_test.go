package vtd_test

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lightwell/godwf/sweep"
	"github.com/lightwell/godwf/vtd"
)

func testRecording() vtd.Recording {
	return vtd.FromResult(sweep.Result{Samples: []sweep.Sample{
		{Elapsed: 0, Input: -5, Output: 5},
		{Elapsed: 0.1, Input: -4.95, Output: 4.9},
		{Elapsed: 0.2, Input: -4.9, Output: 4.8},
	}})
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := testRecording().EncodeCSV(&buf); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "time" || rows[0][1] != "input" || rows[0][2] != "output" {
		t.Errorf("bad header: %v", rows[0])
	}
	if rows[2][1] != "-4.95" {
		t.Errorf("expected input -4.95 in row 2, got %s", rows[2][1])
	}
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	if err := testRecording().Fprint(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "(0, -5, 5)" {
		t.Errorf("unexpected first triple: %s", lines[0])
	}
}

func TestSavePlots(t *testing.T) {
	dir := t.TempDir()
	ts := filepath.Join(dir, "timeseries.png")
	tr := filepath.Join(dir, "vtd.png")
	if err := testRecording().SavePlots(ts, tr); err != nil {
		t.Fatal(err)
	}
}
