package diagnostic

import (
	"errors"
	"log/slog"
	"strings"

	"mapper-generator/internal/common"
)

// Codes reported while resolving a type pair.
const (
	CodeUnmappedProperty   = "unmapped-property"
	CodeNoTransformer      = "no-transformer"
	CodeUnsupportedPair    = "unsupported-pair"
	CodeUnknownOverride    = "unknown-override"
	CodeInvalidOverride    = "invalid-override"
	CodeReadOnlyProperty   = "read-only-property"
	CodeConstructorBinding = "constructor-binding"
	CodeDiscriminator      = "discriminator"
	CodeUnexportedField    = "unexported-field"
	CodeMissingConstructor = "missing-constructor"
)

type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

var severityNames = [...]string{
	DiagnosticInfo:    "info",
	DiagnosticWarning: "warning",
	DiagnosticError:   "error",
}

func (s DiagnosticSeverity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return common.UnknownStr
	}

	return severityNames[s]
}

// Diagnostic is one finding about a type pair, optionally narrowed to a
// target property.
type Diagnostic struct {
	Severity    DiagnosticSeverity
	Code        string
	Message     string
	TypePair    string
	Property    string
	Suggestions []string // similarly named source properties
}

// Diagnostics collects findings by severity. The zero value is ready to use.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

func (d *Diagnostics) add(item Diagnostic) {
	switch item.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, item)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, item)
	default:
		d.Infos = append(d.Infos, item)
	}
}

func (d *Diagnostics) AddError(code, message, typePair, property string) {
	d.add(Diagnostic{DiagnosticError, code, message, typePair, property, nil})
}

func (d *Diagnostics) AddWarning(code, message, typePair, property string, suggestions ...string) {
	d.add(Diagnostic{DiagnosticWarning, code, message, typePair, property, suggestions})
}

func (d *Diagnostics) AddInfo(code, message, typePair, property string) {
	d.add(Diagnostic{DiagnosticInfo, code, message, typePair, property, nil})
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

func (d *Diagnostics) Merge(other Diagnostics) {
	for _, item := range other.All() {
		d.add(item)
	}
}

// All lists errors first, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	var all []Diagnostic
	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		all = append(all, group...)
	}

	return all
}

// Error joins the error diagnostics, one per line. It is nil when there are none.
func (d *Diagnostics) Error() error {
	errs := make([]error, len(d.Errors))
	for i, item := range d.Errors {
		errs[i] = errors.New(item.String())
	}

	return errors.Join(errs...)
}

// Log reports warnings at Warn and infos at Debug. Errors travel as the
// returned error instead.
func (d *Diagnostics) Log(logger *slog.Logger) {
	for _, item := range d.Warnings {
		logger.Warn(item.Message, item.attrs()...)
	}

	for _, item := range d.Infos {
		logger.Debug(item.Message, item.attrs()...)
	}
}

func (d Diagnostic) attrs() []any {
	attrs := []any{slog.String("code", d.Code)}

	if d.TypePair != "" {
		attrs = append(attrs, slog.String("pair", d.TypePair))
	}

	if d.Property != "" {
		attrs = append(attrs, slog.String("property", d.Property))
	}

	if len(d.Suggestions) > 0 {
		attrs = append(attrs, slog.Any("suggestions", d.Suggestions))
	}

	return attrs
}

// String renders "[pair] property: [code] message (did you mean a, b?)".
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.TypePair != "" {
		b.WriteString("[" + d.TypePair + "]")
	}

	if d.Property != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(d.Property)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}

	b.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		b.WriteString(" (did you mean " + strings.Join(d.Suggestions, ", ") + "?)")
	}

	return b.String()
}
