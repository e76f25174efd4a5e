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

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type scalarFlags uint

const (
	flagInteger scalarFlags = 1 << iota
	flagNumeric
	flagSummable
	flagOrderable
)

// ScalarType is one of the fixed set of scalar value types. The widening
// partial order is declared per type via widerTypes; numeric width
// ranks order the numeric types for the widest-type rule.
type ScalarType struct {
	name       string
	flags      scalarFlags
	widerTypes []*ScalarType
	rank       int
}

func (t *ScalarType) Name() string           { return t.name }
func (t *ScalarType) Kind() SymbolKind       { return KindScalar }
func (t *ScalarType) ResultType() TypeSymbol { return t }
func (t *ScalarType) typeSymbol()            {}

// IsInteger reports whether the type is an integer type (int, long).
func (t *ScalarType) IsInteger() bool { return t.flags&flagInteger != 0 }

// IsNumeric reports whether the type is a numeric type.
func (t *ScalarType) IsNumeric() bool { return t.flags&flagNumeric != 0 }

// IsSummable reports whether values of the type can be summed.
func (t *ScalarType) IsSummable() bool { return t.flags&flagSummable != 0 }

// IsOrderable reports whether values of the type have a total order.
func (t *ScalarType) IsOrderable() bool { return t.flags&flagOrderable != 0 }

// IsWiderThan reports whether t is declared strictly wider than other.
func (t *ScalarType) IsWiderThan(other *ScalarType) bool {
	for _, w := range other.widerTypes {
		if w == t {
			return true
		}
	}
	return false
}

var (
	TypeBool     = &ScalarType{name: "bool", flags: flagOrderable}
	TypeInt      = &ScalarType{name: "int", flags: flagInteger | flagNumeric | flagSummable | flagOrderable, rank: 1}
	TypeLong     = &ScalarType{name: "long", flags: flagInteger | flagNumeric | flagSummable | flagOrderable, rank: 2}
	TypeDecimal  = &ScalarType{name: "decimal", flags: flagNumeric | flagSummable | flagOrderable, rank: 3}
	TypeReal     = &ScalarType{name: "real", flags: flagNumeric | flagSummable | flagOrderable, rank: 4}
	TypeString   = &ScalarType{name: "string", flags: flagOrderable}
	TypeDateTime = &ScalarType{name: "datetime", flags: flagSummable | flagOrderable}
	TypeTimespan = &ScalarType{name: "timespan", flags: flagSummable | flagOrderable}
	TypeGuid     = &ScalarType{name: "guid"}
	TypeDynamic  = &ScalarType{name: "dynamic"}
)

func init() {
	TypeInt.widerTypes = []*ScalarType{TypeLong}
	TypeDecimal.widerTypes = []*ScalarType{TypeReal}
}

var scalarTypes = []*ScalarType{
	TypeBool, TypeInt, TypeLong, TypeDecimal, TypeReal,
	TypeString, TypeDateTime, TypeTimespan, TypeGuid, TypeDynamic,
}

// ScalarTypeByName returns the scalar type with the given name, or nil.
// Aliases from the original type system are recognized.
func ScalarTypeByName(name string) *ScalarType {
	switch strings.ToLower(name) {
	case "boolean":
		return TypeBool
	case "int32", "int8", "int16", "uint8", "uint16", "uint32":
		return TypeInt
	case "int64", "uint64", "ulong":
		return TypeLong
	case "double", "float":
		return TypeReal
	case "date":
		return TypeDateTime
	case "time", "timespan":
		return TypeTimespan
	case "uniqueid", "uuid":
		return TypeGuid
	case "object":
		return TypeDynamic
	}
	for _, t := range scalarTypes {
		if strings.EqualFold(t.name, name) {
			return t
		}
	}
	return nil
}

// WidestScalarType returns the widest numeric type among the arguments,
// or nil when none of them is numeric.
func WidestScalarType(types ...TypeSymbol) *ScalarType {
	var widest *ScalarType
	for _, t := range types {
		s, ok := t.(*ScalarType)
		if !ok || !s.IsNumeric() {
			continue
		}
		if widest == nil || s.rank > widest.rank {
			widest = s
		}
	}
	return widest
}

// PromoteScalar widens a type one step up the lattice: int becomes
// long, decimal becomes real. Other types are unchanged.
func PromoteScalar(t TypeSymbol) TypeSymbol {
	s, ok := t.(*ScalarType)
	if !ok {
		return t
	}
	if len(s.widerTypes) > 0 {
		return s.widerTypes[0]
	}
	return s
}

// CommonScalarType returns the best common type across the arguments:
// a non-dynamic scalar beats dynamic, and a type a candidate promotes
// to beats the candidate. Returns nil when no scalar is present.
func CommonScalarType(types ...TypeSymbol) TypeSymbol {
	var best *ScalarType
	for _, t := range types {
		s, ok := t.(*ScalarType)
		if !ok {
			continue
		}
		switch {
		case best == nil:
			best = s
		case s.IsWiderThan(best):
			best = s
		case best == TypeDynamic && s != TypeDynamic:
			best = s
		}
	}
	if best == nil {
		return nil
	}
	return best
}

// ParseScalarValue coerces a literal's source value into the Go
// representation the type carries at binding time. Used for constant
// values and enumerated parameter values.
func ParseScalarValue(t *ScalarType, raw string) (interface{}, error) {
	switch t {
	case TypeBool:
		return cast.ToBoolE(raw)
	case TypeInt:
		v, err := cast.ToInt32E(raw)
		return v, err
	case TypeLong:
		v, err := cast.ToInt64E(raw)
		return v, err
	case TypeReal:
		return cast.ToFloat64E(raw)
	case TypeDecimal:
		return decimal.NewFromString(raw)
	default:
		return raw, nil
	}
}
