package core

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestIsMissing(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "  ", "NA", "nan", "NaN", "null", "None"} {
		if !IsMissing(v) {
			t.Fatalf("expected %q to be missing", v)
		}
	}
	for _, v := range []string{"0", "Male", "N/A2"} {
		if IsMissing(v) {
			t.Fatalf("expected %q to be present", v)
		}
	}
}

func TestNewTableRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	if _, err := NewTable([]string{"a", "b"}, [][]string{{"1"}}); err == nil {
		t.Fatalf("expected error for short row")
	}
	if _, err := NewTable([]string{"a", "a"}, nil); err == nil {
		t.Fatalf("expected error for duplicate column")
	}
}

func TestTableDropAndColumn(t *testing.T) {
	t.Parallel()

	tbl, err := NewTable([]string{"id", "x", "y"}, [][]string{{"1", "a", "b"}, {"2", "c", "d"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dropped := tbl.Drop("id", "unknown")
	if !reflect.DeepEqual(dropped.Columns, []string{"x", "y"}) {
		t.Fatalf("unexpected columns: %v", dropped.Columns)
	}
	if !reflect.DeepEqual(dropped.Rows, [][]string{{"a", "b"}, {"c", "d"}}) {
		t.Fatalf("unexpected rows: %v", dropped.Rows)
	}
	if tbl.Index("id") != 0 {
		t.Fatalf("drop must not modify the source table")
	}

	col, ok := tbl.Column("y")
	if !ok || !reflect.DeepEqual(col, []string{"b", "d"}) {
		t.Fatalf("unexpected column: %v %v", col, ok)
	}
	if _, ok := tbl.Column("missing"); ok {
		t.Fatalf("expected unknown column lookup to fail")
	}
}

func TestRecordIsImmutable(t *testing.T) {
	t.Parallel()

	src := map[string]string{"Gender": "Male"}
	rec := NewRecord(src)
	src["Gender"] = "Female"

	if v, _ := rec.Get("Gender"); v != "Male" {
		t.Fatalf("record changed with its source map: %q", v)
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	t.Parallel()

	err := NewError(ErrArtifactNotFound, "store", "get", io.EOF)

	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected kind match")
	}
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected cause match")
	}
	if errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("unexpected kind match")
	}
	if KindOf(err) != ErrArtifactNotFound {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
	if got := err.Error(); got != "store: get: artifact not found: EOF" {
		t.Fatalf("unexpected message %q", got)
	}
}
