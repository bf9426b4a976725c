package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"shadeweave/internal/diag"
	"shadeweave/internal/provenance"
	"shadeweave/internal/source"
)

func sampleSet() *source.FragmentSet {
	fs := source.NewFragmentSet("scenes/room.json")
	fs.Add(provenance.Material(1), "glass", "vec3 n = normal;\nfloat k = 0.5;\nreturn foo;")
	fs.Add(provenance.Object(0), "floor", "return plane(r);")
	return fs
}

func sampleBag() *diag.Bag {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.ShaderError, diag.At(provenance.Material(1), 3), "'foo' : undeclared identifier"))
	bag.Add(diag.New(diag.SevError, diag.ShaderUnattributed, diag.At(provenance.Default, 412), "syntax error"))
	bag.Add(diag.New(diag.SevWarning, diag.ShaderWarning, diag.At(provenance.Object(0), 1), "implicit conversion").
		WithNote(diag.At(provenance.Material(1), 2), "declared here"))
	return bag
}

func TestJSONBasic(t *testing.T) {
	var buf bytes.Buffer
	opts := JSONOpts{PathMode: PathModeBasename, IncludeNotes: true, IncludeText: true}
	if err := JSON(&buf, sampleBag(), sampleSet(), opts, nil); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 3 {
		t.Errorf("Expected count=3, got %d", output.Count)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "GLS2001" {
		t.Errorf("Expected code=GLS2001, got %s", d.Code)
	}
	if d.Location.File != "room.json" {
		t.Errorf("Expected file=room.json, got %s", d.Location.File)
	}
	if d.Location.Kind != "material" || d.Location.Pos != 1 || d.Location.Entity != "glass" {
		t.Errorf("Unexpected origin: %+v", d.Location)
	}
	if d.Location.Line != 3 {
		t.Errorf("Expected line=3, got %d", d.Location.Line)
	}
	if d.Location.Text != "return foo;" {
		t.Errorf("Expected offending line, got %q", d.Location.Text)
	}

	un := output.Diagnostics[1]
	if un.Location.Kind != "none" || un.Location.Entity != "" || un.Location.Line != 412 {
		t.Errorf("Unexpected unattributed location: %+v", un.Location)
	}

	if len(output.Diagnostics[2].Notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(output.Diagnostics[2].Notes))
	}
	if got := output.Diagnostics[2].Notes[0].Location.Text; got != "float k = 0.5;" {
		t.Errorf("Unexpected note text %q", got)
	}
}

func TestJSONMaxAndNoLine(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevError, diag.ShaderUnparsed, diag.At(provenance.Default, 1<<62), "linker failed"))
	bag.Add(diag.New(diag.SevError, diag.ShaderError, diag.At(provenance.Object(0), 1), "x"))

	out := BuildDiagnosticsOutput(bag, sampleSet(), JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("Expected count=1, got %d", out.Count)
	}
	if out.Diagnostics[0].Location.Line != 0 {
		t.Errorf("Out-of-range line must be omitted, got %d", out.Diagnostics[0].Location.Line)
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, sampleSet(), JSONOpts{Max: 1}, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"line"`) {
		t.Errorf("Expected no line field:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), `"timings"`) {
		t.Errorf("Expected no timings field:\n%s", buf.String())
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "shadeweave", ToolVersion: "test", InvocationArgs: []string{"check", "room.json"}}
	if err := Sarif(&buf, sampleBag(), sampleSet(), meta); err != nil {
		t.Fatalf("Sarif() error: %v", err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Invocations []struct {
				ExecutionSuccessful bool `json:"executionSuccessful"`
			} `json:"invocations"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					Logical []struct {
						Name string `json:"name"`
					} `json:"logicalLocations"`
					Props map[string]any `json:"properties"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("Invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("Unexpected SARIF envelope: %s", buf.String())
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "shadeweave" {
		t.Errorf("Unexpected tool name %q", run.Tool.Driver.Name)
	}
	if len(run.Tool.Driver.Rules) != 3 || run.Tool.Driver.Rules[0].ID != "GLS2001" {
		t.Errorf("Unexpected rules: %+v", run.Tool.Driver.Rules)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Errorf("Errors present, execution must not be successful")
	}
	if len(run.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(run.Results))
	}
	first := run.Results[0]
	if first.Level != "error" || first.Locations[0].Logical[0].Name != "material 'glass'" {
		t.Errorf("Unexpected first result: %+v", first)
	}
	if first.Locations[0].Props["line"] != float64(3) {
		t.Errorf("Expected line property 3, got %v", first.Locations[0].Props["line"])
	}
	if len(run.Results[1].Locations[0].Logical) != 0 {
		t.Errorf("Unattributed result must have no logical location")
	}
	if run.Results[2].Level != "warning" {
		t.Errorf("Expected warning level, got %s", run.Results[2].Level)
	}
}
