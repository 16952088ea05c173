package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"heat/calculator"
)

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"5", "10", "in.txt"},
		{"x", "10", "in.txt", "out.txt"},
		{"5", "-1", "in.txt", "out.txt"},
		{"0", "10", "in.txt", "out.txt"},
	} {
		var stderr bytes.Buffer
		args = append([]string{"-config", "missing.ini"}, args...)
		if code := run(args, &stderr); code != 1 {
			t.Errorf("%v: exit code %d", args, code)
		}
		if !strings.Contains(stderr.String(), "Usage") {
			t.Errorf("%v: usage not reported: %q", args, stderr.String())
		}
	}
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	report := filepath.Join(dir, "report.yaml")
	if err := os.WriteFile(in, []byte("5 temps\n0 25 50 75 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	args := []string{"-config", filepath.Join(dir, "none.ini"), "-workers", "3", "-threads", "2", "-report", report, "12", "60", in, out}
	if code := run(args, os.Stderr); code != 0 {
		t.Fatalf("exit code %d", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Fields(string(data))
	temps := []float64{0, 25, 50, 75, 100}
	if len(lines) != len(temps) {
		t.Fatalf("got %q", data)
	}
	for i, line := range lines {
		got, err := strconv.ParseFloat(line, 64)
		if err != nil {
			t.Fatal(err)
		}
		if want := calculator.Solve(12, 60, temps[i]); got != want {
			t.Errorf("line %d = %v, want %v", i, got, want)
		}
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestRun_BadInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(in, []byte("3\n1 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := run([]string{"-config", filepath.Join(dir, "none.ini"), "-workers", "2", "5", "10", in, out}, os.Stderr); code != 1 {
		t.Errorf("exit code %d", code)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file must not exist")
	}
}
