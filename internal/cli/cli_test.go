package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolvePrintsCanonicalConfig(t *testing.T) {
	path := writeFile(t, "quiz.json", `{
		"id": "quiz-1",
		"title": "Capitals",
		"pages": [{"id": "p1", "title": "Europe", "questions": [{
			"id": "q1",
			"type": "fill-in-the-blank",
			"prompt": "{{de}} and {{it}}",
			"correctAnswers": ["Berlin", "Rome"]
		}]}]
	}`)

	stdout, stderr, err := run(t, "resolve", path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(stdout, `"version": "2"`) || !strings.Contains(stdout, `"de": "Berlin"`) {
		t.Fatalf("expected canonical JSON, got %s", stdout)
	}
	if !strings.Contains(stderr, "1 total points") {
		t.Fatalf("expected total points summary, got %q", stderr)
	}
}

func TestResolveRejectsInvalidConfig(t *testing.T) {
	path := writeFile(t, "quiz.json", `[1, 2, 3]`)
	if _, _, err := run(t, "resolve", path); err == nil {
		t.Fatalf("expected error for non-object config")
	}
}

func TestWeightsPrintsTable(t *testing.T) {
	path := writeFile(t, "course.yaml", `
id: physics
name: Physics
children:
  - id: hw
    name: Homework
    weight: 40
    children:
      - {id: q1, name: Quiz 1, kind: item, weight: 50}
      - {id: q2, name: Quiz 2, kind: item}
  - id: exam
    name: Exam
    kind: item
  - id: bonus
    name: Bonus
    kind: item
    extraCredit: true
`)

	stdout, _, err := run(t, "weights", path)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	for _, want := range []string{
		"Homework 40.00% × Quiz 1 50.00% = 20.00% of course",
		"Exam 60.00% = 60.00% of course",
		"Bonus: not weighted",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
