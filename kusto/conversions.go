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

import "strings"

// Conversion is the strictness level used when testing assignability.
type Conversion int

const (
	// ConversionNone allows identity only.
	ConversionNone Conversion = iota
	// ConversionPromotable also allows widening up the scalar lattice.
	ConversionPromotable
	// ConversionCompatible allows promotion in either direction.
	ConversionCompatible
	// ConversionAny allows everything.
	ConversionAny
)

// IsPromotable reports whether from widens to to in the scalar lattice.
func IsPromotable(from, to TypeSymbol) bool {
	fs, ok1 := from.(*ScalarType)
	ts, ok2 := to.(*ScalarType)
	if !ok1 || !ok2 {
		return false
	}
	return ts.IsWiderThan(fs)
}

// IsAssignable reports whether a value of type from may be used where
// type to is required, under the given conversion strictness.
func IsAssignable(from, to TypeSymbol, conversion Conversion) bool {
	if from == nil || to == nil {
		return false
	}
	if from == to {
		return true
	}
	if IsError(from) || IsError(to) {
		// Error types silence downstream checks.
		return true
	}
	if conversion == ConversionAny {
		return true
	}

	switch target := to.(type) {
	case *ScalarType:
		source, ok := from.(*ScalarType)
		if !ok {
			return false
		}
		// Dynamic absorbs any scalar at every strictness level.
		if target == TypeDynamic || source == TypeDynamic {
			return true
		}
		switch conversion {
		case ConversionNone:
			return source == target
		case ConversionPromotable:
			return target.IsWiderThan(source)
		case ConversionCompatible:
			return target.IsWiderThan(source) || source.IsWiderThan(target)
		}
		return false

	case *TableSymbol:
		source, ok := from.(*TableSymbol)
		if !ok {
			return false
		}
		return IsTableAssignable(source, target, conversion)

	case *TupleSymbol:
		source, ok := from.(*TupleSymbol)
		if !ok || len(source.Columns()) != len(target.Columns()) {
			return false
		}
		for i, sc := range source.Columns() {
			if !IsColumnAssignable(sc, target.Columns()[i], conversion) {
				return false
			}
		}
		return true
	}

	return false
}

// IsTableAssignable reports whether from is a structural subtype of to:
// every column of to exists in from (by name, case-insensitively) with
// an assignable type.
func IsTableAssignable(from, to *TableSymbol, conversion Conversion) bool {
	for _, want := range to.Columns() {
		have, ok := from.Column(want.Name())
		if !ok {
			return false
		}
		if !IsAssignable(have.Type(), want.Type(), conversion) {
			return false
		}
	}
	return true
}

// IsColumnAssignable reports whether the columns have equal names and
// assignable types.
func IsColumnAssignable(from, to *Column, conversion Conversion) bool {
	return strings.EqualFold(from.Name(), to.Name()) &&
		IsAssignable(from.Type(), to.Type(), conversion)
}

// TypeName formats a type for diagnostics.
func TypeName(t TypeSymbol) string {
	if t == nil {
		return "<nil>"
	}
	switch s := t.(type) {
	case *TableSymbol:
		var b strings.Builder
		b.WriteString("(")
		for i, c := range s.Columns() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Name())
			b.WriteString(": ")
			b.WriteString(TypeName(c.Type()))
		}
		b.WriteString(")")
		return b.String()
	default:
		return t.Name()
	}
}
