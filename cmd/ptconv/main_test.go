package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `[
  {"_type":"block","_key":"a","style":"h2","children":[{"_type":"span","text":"Intro"}]},
  {"_type":"block","_key":"b","style":"normal","children":[{"_type":"span","text":"First paragraph."}]},
  {"_type":"block","_key":"c","style":"normal","children":[{"_type":"span","text":"Second paragraph."}]},
  {"_type":"block","_key":"d","style":"h3","children":[{"_type":"span","text":"Details"}]}
]`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_TOC(t *testing.T) {
	path := writeInput(t, "post.json", sampleJSON)
	code, out, errOut := runCLI(t, "--format", "toc", path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	expected := "- Intro (#intro)\n  - Details (#details)\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestRun_Split(t *testing.T) {
	path := writeInput(t, "post.json", sampleJSON)
	code, out, errOut := runCLI(t, "-f", "split", "--categories", "dog-bite, wage-theft", path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	for _, want := range []string{
		"split_index: 3\n",
		"before: 3 blocks\n",
		"after: 1 blocks\n",
		"cta_title: Affected by a Dog Bite Issue?\n",
		"cta_url: https://casevalue.law/#case/dog_bite/0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestRun_HTMLFromMarkdown(t *testing.T) {
	path := writeInput(t, "draft.md", "Read [this](https://casevalue.law/blog) first.\n")
	code, out, errOut := runCLI(t, path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, `<a href="https://casevalue.law/blog" target="_self">this</a>`) {
		t.Errorf("expected internal link opening in place, got %q", out)
	}
}

func TestRun_JSONRoundTrip(t *testing.T) {
	path := writeInput(t, "post.json", sampleJSON)
	code, out, _ := runCLI(t, "--format=json", path)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, `"style": "h3"`) || !strings.Contains(out, `"text": "Details"`) {
		t.Errorf("unexpected json output %q", out)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no file", nil, exitUsage},
		{"two files", []string{"a.md", "b.md"}, exitUsage},
		{"bad format", []string{"--format", "pdf", "a.md"}, exitUsage},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.md")}, exitError},
		{"unsupported", []string{writeInput(t, "notes.xyz", "hi")}, exitError},
		{"bad json", []string{writeInput(t, "bad.json", "{")}, exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d (%s)", tt.code, code, errOut)
			}
			if errOut == "" {
				t.Error("expected a message on stderr")
			}
		})
	}
}
