package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"shadeweave/internal/diag"
	"shadeweave/internal/source"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID        string       `json:"id"`
	ShortDesc sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	Physical sarifPhysical  `json:"physicalLocation"`
	Logical  []sarifLogical `json:"logicalLocations,omitempty"`
	Props    map[string]any `json:"properties,omitempty"`
}

type sarifPhysical struct {
	Artifact sarifArtifact `json:"artifactLocation"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifLogical struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Sarif writes diagnostics as a SARIF v2.1.0 log. Scene files carry fragments
// as string values, so results name the fragment as a logical location and
// put the fragment-local line in the location properties.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FragmentSet, meta SarifRunMeta) error {
	uri := PathModeRelative.format(fs.Path())

	var codes []diag.Code
	results := make([]sarifResult, 0, bag.Len())
	for _, d := range bag.Items() {
		if !slices.Contains(codes, d.Code) {
			codes = append(codes, d.Code)
		}
		loc := sarifLocation{Physical: sarifPhysical{Artifact: sarifArtifact{URI: uri}}}
		if !d.Primary.Origin.IsDefault() {
			loc.Logical = []sarifLogical{{Name: fs.Label(d.Primary.Origin), Kind: d.Primary.Origin.Kind.String()}}
		}
		if d.Primary.HasLine() {
			loc.Props = map[string]any{"line": d.Primary.Line}
		}
		results = append(results, sarifResult{
			RuleID:    d.Code.ID(),
			Level:     d.Severity.SARIFLevel(),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{loc},
		})
	}
	slices.Sort(codes)
	rules := make([]sarifRule, len(codes))
	for i, c := range codes {
		rules[i] = sarifRule{ID: c.ID(), ShortDesc: sarifMessage{Text: c.Title()}}
	}

	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion, Rules: rules}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !bag.HasErrors()}}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	})
}
