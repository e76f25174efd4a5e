// Copyright 2023 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kusto

import "gopkg.in/src-d/go-errors.v1"

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one semantic finding: a message kind, the source span
// it applies to, and the formatted message. Diagnostics are
// accumulated, never thrown.
type Diagnostic struct {
	Kind     *errors.Kind
	Severity Severity
	Span     Span
	Message  string
}

// NewDiagnostic formats a diagnostic from an error kind.
func NewDiagnostic(span Span, kind *errors.Kind, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Span:     span,
		Message:  kind.New(args...).Error(),
	}
}

// NewWarning formats a warning diagnostic from an error kind.
func NewWarning(span Span, kind *errors.Kind, args ...interface{}) Diagnostic {
	d := NewDiagnostic(span, kind, args...)
	d.Severity = SeverityWarning
	return d
}

// Is reports whether the diagnostic was produced from the given kind.
func (d Diagnostic) Is(kind *errors.Kind) bool { return d.Kind == kind }

func (d Diagnostic) String() string { return d.Message }
