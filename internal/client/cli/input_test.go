package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb\n\n\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		def      int
		expected int
		wantErr  bool
	}{
		{name: "number", input: "7\n", def: 3, expected: 7},
		{name: "empty uses default", input: "\n", def: 3, expected: 3},
		{name: "garbage errors", input: "abc\n", def: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bufio.NewReader(strings.NewReader(tt.input))
			var out bytes.Buffer
			got, err := GetInt(in, "n?", tt.def, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Fatalf("got %d, err=%v", got, err)
			}
		})
	}
}
