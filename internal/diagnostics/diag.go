package diagnostics

import "time"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes pushed to the status feed.
const (
	GestureUnavailable = "GESTURE.UNAVAILABLE"
	GestureMalformed   = "GESTURE.MALFORMED"
	SinkInit           = "SINK.INIT"
	SinkWrite          = "SINK.WRITE"
	TemplateSwitched   = "TEMPLATE.SWITCHED"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	At             time.Time      `json:"at"`
}

// Unavailable describes a gesture source that has failed for good.
func Unavailable(reason string) Diagnostic {
	return Diagnostic{
		Severity: Err,
		Code:     GestureUnavailable,
		Summary:  "Gesture source unavailable",
		Detail:   reason,
		LikelyCauses: []string{
			"camera permission denied",
			"tracker process exited",
		},
		SuggestedFixes: []string{"restart the tracker and reload the page"},
		At:             time.Now(),
	}
}

// SinkFailed describes an output that could not be opened or written.
func SinkFailed(code, sink string, err error) Diagnostic {
	d := Diagnostic{
		Severity: Warn,
		Code:     code,
		Summary:  sink + " output failed",
		Evidence: map[string]any{"sink": sink},
		At:       time.Now(),
	}
	if err != nil {
		d.Detail = err.Error()
	}
	return d
}

// Malformed reports the first gesture message that failed to decode.
func Malformed(err error) Diagnostic {
	return Diagnostic{
		Severity:       Warn,
		Code:           GestureMalformed,
		Summary:        "Gesture message rejected",
		Detail:         err.Error(),
		LikelyCauses:   []string{"tracker sends a different landmark model", "client speaks another protocol"},
		SuggestedFixes: []string{"send 21 landmarks per hand as {\"landmarks\":[{\"x\":..,\"y\":..,\"z\":..}]}"},
		At:             time.Now(),
	}
}

func Switched(from, to string, generation uint64) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     TemplateSwitched,
		Summary:  "Switched to " + to,
		Evidence: map[string]any{"from": from, "to": to, "generation": generation},
		At:       time.Now(),
	}
}
