package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zefrenchwan/docfilters.git/commands"
	"github.com/zefrenchwan/docfilters.git/storage"
)

const SNAPSHOT = `
id: doc-1
name: Tower
categories:
  - id: 10
    name: Walls
elements:
  - id: 1
    category: 10
    class: Wall
    name: W1
    parameters:
      - name: Material
        value: Concrete
  - id: 2
    category: 10
    class: Wall
    name: W2
    parameters:
      - name: Material
        value: Wood
views:
  - id: 100
    name: Level 1
    kind: FloorPlan
    filters:
      - filter: 301
filters:
  - id: 301
    name: Concrete
    categories: [Walls]
    predicate:
      kind: equals
      parameter: Material
      value: Concrete
  - id: 302
    name: Wood
    categories: [Walls]
    predicate:
      kind: equals
      parameter: Material
      value: Wood
`

// prepareFiles writes the snapshot and the request in a temporary directory
func prepareFiles(t *testing.T, request string) (string, string) {
	directory := t.TempDir()
	snapshot := filepath.Join(directory, "model.yaml")
	requestFile := filepath.Join(directory, "request.yaml")
	if err := os.WriteFile(snapshot, []byte(SNAPSHOT), 0o644); err != nil {
		t.Fatal(err)
	} else if err := os.WriteFile(requestFile, []byte(request), 0o644); err != nil {
		t.Fatal(err)
	}

	return snapshot, requestFile
}

// run executes the command line and returns its output
func run(t *testing.T, args ...string) (string, error) {
	var output strings.Builder
	root := commands.NewRootCmd()
	root.SetOut(&output)
	root.SetArgs(args)
	err := root.Execute()
	return output.String(), err
}

func TestQueryCommand(t *testing.T) {
	snapshot, request := prepareFiles(t, `
scope:
  kind: category
  category: Walls
predicate:
  kind: equals
  parameter: Material
  value: concrete
columns: [Material]
`)

	output, err := run(t, "query", request, "--snapshot", snapshot, "--name", "concrete.csv")
	if err != nil {
		t.Fatal(err)
	}

	expected := "EXPORT::CSV::concrete.csv\n" +
		`"Element Id","Category","Name","Material"` + "\n" +
		`"1","Walls","W1","Concrete"` + "\n"
	if output != expected {
		t.Errorf("unexpected output %q", output)
	}

	output, _ = run(t, "query", request, "--snapshot", snapshot, "-f", "txt")
	if !strings.HasPrefix(output, "EXPORT::TXT::query_results.txt\n") {
		t.Errorf("unexpected output %q", output)
	}
}

func TestSweepCommand(t *testing.T) {
	snapshot, _ := prepareFiles(t, "")
	output, err := run(t, "sweep", "--snapshot", snapshot)
	if err != nil {
		t.Fatal(err)
	}

	expected := "EXPORT::CSV::unused_filters.csv\n" +
		`"Filter Id","Filter Name"` + "\n" +
		`"302","Wood"` + "\n"
	if output != expected {
		t.Errorf("unexpected output %q", output)
	}
}

func TestApplyCommand(t *testing.T) {
	snapshot, request := prepareFiles(t, `
scope:
  kind: category
  category: Walls
predicate:
  kind: and
mutation:
  kind: rename
  prefix: "EXT-"
`)

	output, err := run(t, "apply", request, "--snapshot", snapshot, "--save")
	if err != nil {
		t.Fatal(err)
	} else if !strings.Contains(output, `"1","Applied"`) || !strings.Contains(output, `"2","Applied"`) {
		t.Errorf("unexpected output %q", output)
	}

	saved, errRead := storage.ReadSnapshot(snapshot)
	if errRead != nil {
		t.Fatal(errRead)
	} else if saved.Elements[0].Name != "EXT-W1" || saved.Elements[1].Name != "EXT-W2" {
		t.Error("renames not saved")
	}

	// second run changes nothing
	output, _ = run(t, "apply", request, "--snapshot", snapshot)
	if strings.Contains(output, "Applied") || !strings.Contains(output, "SkippedNoop") {
		t.Errorf("second run should skip, got %q", output)
	}
}

func TestCommandErrors(t *testing.T) {
	_, request := prepareFiles(t, "scope:\n  kind: all\npredicate:\n  kind: and\n")
	if _, err := run(t, "query", request); err == nil {
		t.Error("no document should fail")
	}

	snapshot, _ := prepareFiles(t, "")
	if _, err := run(t, "apply", request, "--snapshot", snapshot); err == nil {
		t.Error("no mutation should fail")
	} else if _, err := run(t, "sweep", "--snapshot", snapshot, "--format", "pdf"); err == nil {
		t.Error("invalid format should fail")
	}
}
