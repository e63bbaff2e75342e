package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/classguard/classfile"
	"github.com/dhamidi/classguard/config"
	"github.com/dhamidi/classguard/internal/classtest"
)

func writeClass(t *testing.T, c *classtest.Class) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "A.class")
	if err := os.WriteFile(path, c.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckFile(t *testing.T) {
	clean := classtest.New("demo/A")
	clean.Method(0x0009, "run", "()V", clean.Attr(classfile.AttrCode, classtest.Code(0, 0, []byte{0xB1}, nil)))

	dirty := classtest.New("demo/A")
	dirty.Attrs = append(dirty.Attrs, dirty.Attr(classfile.AttrSourceFile, classtest.U2(dirty.This)))

	tests := []struct {
		name  string
		class *classtest.Class
		want  string
	}{
		{"clean", clean, "ok"},
		{"dirty", dirty, "dirty (1 dropped, 0 rewrites)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkFile(writeClass(t, tt.class), config.Default())
			if err != nil {
				t.Fatalf("checkFile: %v", err)
			}
			if got != tt.want {
				t.Errorf("checkFile = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("not a class", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.class")
		os.WriteFile(path, []byte("nope"), 0644)
		if _, err := checkFile(path, config.Default()); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestStripCommand(t *testing.T) {
	c := classtest.New("demo/A")
	c.Attrs = append(c.Attrs, c.Attr(classfile.AttrSourceFile, classtest.U2(c.This)))
	input := writeClass(t, c)
	output := filepath.Join(filepath.Dir(input), "B.class")

	cmd := newStripCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{input, "-o", output})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("strip: %v", err)
	}

	if !strings.Contains(out.String(), "dropped\tclass demo/A: SourceFile:") {
		t.Errorf("output lacks the dropped attribute:\n%s", out.String())
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		t.Fatalf("stripped class does not parse: %v", err)
	}
	if len(cf.Attributes) != 0 {
		t.Errorf("stripped class keeps %d attributes", len(cf.Attributes))
	}
}

func TestDigest(t *testing.T) {
	a, b := digest([]byte("a")), digest([]byte("b"))
	if len(a) != 16 || a == b {
		t.Errorf("digest(a) = %s, digest(b) = %s", a, b)
	}
}
