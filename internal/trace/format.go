package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
)

// Format is the output encoding of trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
	FormatChrome               // chrome://tracing event array
)

const (
	chromeHeader = "{\"traceEvents\":[\n"
	chromeFooter = "\n]}\n"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|chrome)", s)
}

// FormatEvent encodes one event. Chrome events are encoded for process 1;
// use a tracer or RingTracer.Dump for a complete chrome document with one
// process per scene.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev, 1)
	default:
		return formatText(ev)
	}
}

// fields returns the extra map merged with the typed scene, section and
// fragment fields, for encodings that only carry string maps.
func (ev *Event) fields() map[string]string {
	if ev.Detail == "" && ev.Section == "" && ev.Fragment.IsDefault() {
		return ev.Extra
	}
	out := make(map[string]string, len(ev.Extra)+3)
	maps.Copy(out, ev.Extra)
	if ev.Detail != "" {
		out["detail"] = ev.Detail
	}
	if ev.Section != "" {
		out["section"] = ev.Section
	}
	if !ev.Fragment.IsDefault() {
		out["fragment"] = ev.Fragment.String()
	}
	return out
}

func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time     string            `json:"time"`
		Seq      uint64            `json:"seq"`
		Kind     string            `json:"kind"`
		Scope    string            `json:"scope"`
		SpanID   uint64            `json:"span_id,omitempty"`
		ParentID uint64            `json:"parent_id,omitempty"`
		GID      uint64            `json:"gid,omitempty"`
		Name     string            `json:"name"`
		Detail   string            `json:"detail,omitempty"`
		Scene    string            `json:"scene,omitempty"`
		Section  string            `json:"section,omitempty"`
		Fragment string            `json:"fragment,omitempty"`
		Extra    map[string]string `json:"extra,omitempty"`
	}
	je := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Scene:    ev.Scene,
		Section:  ev.Section,
		Extra:    ev.Extra,
	}
	if !ev.Fragment.IsDefault() {
		je.Fragment = ev.Fragment.String()
	}
	data, err := json.Marshal(je)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

type chromeEvent struct {
	Name string            `json:"name"`
	Cat  string            `json:"cat,omitempty"`
	Ph   string            `json:"ph"`
	Ts   int64             `json:"ts"`
	Pid  int               `json:"pid"`
	Tid  uint64            `json:"tid"`
	Args map[string]string `json:"args,omitempty"`
}

func formatChrome(ev *Event, pid int) []byte {
	ph := "i"
	switch ev.Kind {
	case KindSpanBegin:
		ph = "B"
	case KindSpanEnd:
		ph = "E"
	}
	data, err := json.Marshal(chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   ph,
		Ts:   ev.Time.UnixNano() / int64(time.Microsecond),
		Pid:  pid,
		Tid:  ev.GID,
		Args: ev.fields(),
	})
	if err != nil {
		return nil
	}
	return data
}

// chromeWriter frames events as a chrome://tracing document. Every scene gets
// its own process row, named by a metadata event written before the first
// event of that scene; events outside any scene go to process 1.
type chromeWriter struct {
	w    io.Writer
	pids map[string]int
	n    int
}

func newChromeWriter(w io.Writer) *chromeWriter {
	return &chromeWriter{w: w, pids: map[string]int{}}
}

func (c *chromeWriter) header() error {
	_, err := io.WriteString(c.w, chromeHeader)
	return err
}

func (c *chromeWriter) footer() error {
	_, err := io.WriteString(c.w, chromeFooter)
	return err
}

func (c *chromeWriter) write(ev *Event) error {
	pid, ok := c.pids[ev.Scene]
	if !ok {
		pid = len(c.pids) + 1
		c.pids[ev.Scene] = pid
		name := ev.Scene
		if name == "" {
			name = "shadeweave"
		}
		meta, err := json.Marshal(chromeEvent{Name: "process_name", Ph: "M", Pid: pid, Args: map[string]string{"name": name}})
		if err != nil {
			return err
		}
		if err := c.item(meta); err != nil {
			return err
		}
	}
	return c.item(formatChrome(ev, pid))
}

func (c *chromeWriter) item(data []byte) error {
	if c.n > 0 {
		if _, err := io.WriteString(c.w, ",\n"); err != nil {
			return err
		}
	}
	c.n++
	_, err := c.w.Write(data)
	return err
}

// formatText renders `[seq] → name @scene [section] (detail) {k=v}`; child
// spans are indented.
func formatText(ev *Event) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	case KindHeartbeat:
		sb.WriteString("♡ ")
	}

	sb.WriteString(ev.Name)
	if ev.Scene != "" {
		sb.WriteString(" @")
		sb.WriteString(ev.Scene)
	}
	if ev.Section != "" && ev.Scope == ScopeFragment {
		fmt.Fprintf(&sb, " [%s]", ev.Section)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}

	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", k, ev.Extra[k])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
