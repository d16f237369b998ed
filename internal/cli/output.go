package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		apiErr := &APIError{Message: err.Error()}
		errors.As(err, &apiErr)
		data, _ := json.Marshal(ErrorResponse{Error: *apiErr})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case ChatReply:
		o.printChatReply(v)
	case SnapshotResult:
		fmt.Fprintf(o.w, "Snapshot: %s\n", color.CyanString(v.Dir))
	case SnapshotList:
		o.printSnapshotList(v)
	case StoresResult:
		for _, f := range v.Files {
			fmt.Fprintf(o.w, "Store: %s\n", color.CyanString(f))
		}
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", statusColor(v.Status))
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// ChatOption response type
type ChatOption struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// ChatReply response type (matches API)
type ChatReply struct {
	Text    string       `json:"text"`
	Options []ChatOption `json:"options"`
	State   string       `json:"state,omitempty"`
	Ignored bool         `json:"ignored,omitempty"`
}

// SnapshotResult response type
type SnapshotResult struct {
	Dir string `json:"dir"`
}

// SnapshotList response type
type SnapshotList struct {
	Snapshots []string `json:"snapshots"`
}

// StoresResult lists the store files that were checked
type StoresResult struct {
	Files []string `json:"files"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printChatReply(r ChatReply) {
	if r.Ignored {
		fmt.Fprintln(o.w, color.HiBlackString("(no reply)"))
	} else {
		fmt.Fprintln(o.w, r.Text)
	}
	for _, opt := range r.Options {
		fmt.Fprintf(o.w, "  [%s]\n", color.YellowString(opt.Label))
	}
	if r.State != "" {
		fmt.Fprintf(o.w, "State: %s\n", color.CyanString(r.State))
	}
}

func (o *Output) printSnapshotList(l SnapshotList) {
	if len(l.Snapshots) == 0 {
		fmt.Fprintln(o.w, "No snapshots")
		return
	}
	fmt.Fprintf(o.w, "Snapshots (%d):\n", len(l.Snapshots))
	for _, name := range l.Snapshots {
		fmt.Fprintf(o.w, "  - %s\n", name)
	}
}

func statusColor(status string) string {
	if status == "ok" {
		return color.GreenString(status)
	}
	return color.RedString(status)
}
