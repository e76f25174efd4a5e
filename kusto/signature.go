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

// ParameterTypeKind describes the set of types a parameter accepts.
type ParameterTypeKind int

const (
	// ParameterTypeDeclared accepts the explicitly listed types.
	ParameterTypeDeclared ParameterTypeKind = iota
	ParameterTypeScalar
	ParameterTypeInteger
	ParameterTypeRealOrDecimal
	ParameterTypeStringOrDynamic
	ParameterTypeIntegerOrDynamic
	ParameterTypeNumber
	ParameterTypeSummable
	ParameterTypeTabular
	ParameterTypeSingleColumnTable
	ParameterTypeDatabase
	ParameterTypeCluster
	ParameterTypeNotBool
	ParameterTypeNotRealOrBool
	ParameterTypeNotDynamic
	// ParameterTypeParameter0..2 accept whatever type the argument
	// mapped to that earlier parameter has.
	ParameterTypeParameter0
	ParameterTypeParameter1
	ParameterTypeParameter2
	// The Common kinds accept scalars and participate in computing the
	// common return type.
	ParameterTypeCommonScalar
	ParameterTypeCommonScalarOrDynamic
	ParameterTypeCommonNumber
	ParameterTypeCommonSummable
)

// ArgumentKind restricts the syntactic shape of an argument.
type ArgumentKind int

const (
	ArgumentNormal ArgumentKind = iota
	// ArgumentColumn requires the argument to reference a column.
	ArgumentColumn
	// ArgumentConstant requires a constant-foldable expression.
	ArgumentConstant
	// ArgumentLiteral requires a literal.
	ArgumentLiteral
	// ArgumentLiteralNotEmpty requires a non-empty literal.
	ArgumentLiteralNotEmpty
	// ArgumentStar accepts the * expression.
	ArgumentStar
)

// Parameter is one formal parameter of a signature.
type Parameter struct {
	name                  string
	typeKind              ParameterTypeKind
	declaredTypes         []TypeSymbol
	argumentKind          ArgumentKind
	values                []interface{}
	caseSensitiveValues   bool
	optional              bool
	defaultValueIndicator string
}

// NewParameter declares a parameter accepting the listed types.
func NewParameter(name string, types ...TypeSymbol) *Parameter {
	return &Parameter{name: name, typeKind: ParameterTypeDeclared, declaredTypes: types}
}

// NewKindParameter declares a parameter by type-kind category.
func NewKindParameter(name string, kind ParameterTypeKind) *Parameter {
	return &Parameter{name: name, typeKind: kind}
}

func (p *Parameter) Name() string                { return p.name }
func (p *Parameter) Kind() SymbolKind            { return KindParameter }
func (p *Parameter) TypeKind() ParameterTypeKind { return p.typeKind }
func (p *Parameter) DeclaredTypes() []TypeSymbol { return p.declaredTypes }
func (p *Parameter) ArgumentKind() ArgumentKind  { return p.argumentKind }
func (p *Parameter) Values() []interface{}       { return p.values }
func (p *Parameter) CaseSensitiveValues() bool   { return p.caseSensitiveValues }
func (p *Parameter) IsOptional() bool            { return p.optional }
func (p *Parameter) DefaultValueIndicator() string {
	return p.defaultValueIndicator
}

// ResultType is the declared type when exactly one was declared, else
// the error sentinel; parameters bound to arguments get their real type
// from the call site.
func (p *Parameter) ResultType() TypeSymbol {
	if p.typeKind == ParameterTypeDeclared && len(p.declaredTypes) == 1 {
		return p.declaredTypes[0]
	}
	return ErrorType
}

// WithArgumentKind returns a copy with the argument-kind restriction.
func (p *Parameter) WithArgumentKind(k ArgumentKind) *Parameter {
	np := *p
	np.argumentKind = k
	return &np
}

// WithValues returns a copy accepting only the enumerated literal
// values.
func (p *Parameter) WithValues(caseSensitive bool, values ...interface{}) *Parameter {
	np := *p
	np.values = values
	np.caseSensitiveValues = caseSensitive
	return &np
}

// Optional returns a copy marked optional.
func (p *Parameter) Optional() *Parameter {
	np := *p
	np.optional = true
	return &np
}

// WithDefaultValueIndicator returns a copy whose indicator literal
// counts as "use the default".
func (p *Parameter) WithDefaultValueIndicator(indicator string) *Parameter {
	np := *p
	np.defaultValueIndicator = indicator
	return &np
}

// AcceptsValue reports whether a literal value is in the enumerated
// accepted set (always true when no set was declared).
func (p *Parameter) AcceptsValue(v interface{}) bool {
	if len(p.values) == 0 {
		return true
	}
	for _, accepted := range p.values {
		if p.caseSensitiveValues {
			if accepted == v {
				return true
			}
		} else if sa, ok := accepted.(string); ok {
			if sv, ok := v.(string); ok && strings.EqualFold(sa, sv) {
				return true
			}
		} else if accepted == v {
			return true
		}
	}
	if s, ok := v.(string); ok && p.defaultValueIndicator != "" && s == p.defaultValueIndicator {
		return true
	}
	return false
}

// ReturnTypeKind selects how a signature's return type is computed.
type ReturnTypeKind int

const (
	// ReturnDeclared returns the declared type.
	ReturnDeclared ReturnTypeKind = iota
	// ReturnComputed parses and binds the body text.
	ReturnComputed
	// ReturnParameter0..2 copy the type of the argument mapped to the
	// indexed parameter.
	ReturnParameter0
	ReturnParameter1
	ReturnParameter2
	// ReturnParameterN copies the type of the last parameter's
	// argument; ReturnParameterNLiteral reads it as a type literal.
	ReturnParameterN
	ReturnParameterNLiteral
	// ReturnParameter0Promoted widens parameter 0's type one step.
	ReturnParameter0Promoted
	// ReturnCommon is the common scalar type across Common-kind
	// parameters' arguments.
	ReturnCommon
	// ReturnWidest is the widest numeric type among the arguments.
	ReturnWidest
	// ReturnParameter0Cluster/Database/Table evaluate parameter 0's
	// string literal against the catalog.
	ReturnParameter0Cluster
	ReturnParameter0Database
	ReturnParameter0Table
	// ReturnCustom delegates to the signature's own closure.
	ReturnCustom
)

// FunctionBodyFacts is a bitmask of facts discovered while binding a
// computed-return body, cached per signature.
type FunctionBodyFacts uint

const (
	BodyFactNone             FunctionBodyFacts = 0
	BodyFactCluster          FunctionBodyFacts = 1 << iota // references cluster(...)
	BodyFactDatabase                                       // references database(...)
	BodyFactQualifiedTable                                 // references database(...).table(...)
	BodyFactUnqualifiedTable                               // references table(...) without qualification
	BodyFactVariableReturn                                 // return schema depends on arguments
)

// CustomArg carries the per-argument facts a custom return closure may
// inspect.
type CustomArg struct {
	Type     TypeSymbol
	Constant bool
	Value    interface{}
}

// CustomReturnContext is passed to ReturnCustom closures.
type CustomReturnContext struct {
	Globals  *GlobalState
	RowScope *TableSymbol
	Args     []CustomArg
}

// CustomReturnType computes a result schema for signatures whose shape
// is not expressible by the fixed return kinds.
type CustomReturnType func(ctx *CustomReturnContext) TypeSymbol

// Signature is one overload of a function or operator.
type Signature struct {
	symbol         Symbol
	returnKind     ReturnTypeKind
	returnType     TypeSymbol
	body           string
	custom         CustomReturnType
	parameters     []*Parameter
	minArgs        int
	maxArgs        int
	lastRepeatable bool

	// Cached facts for computed-return bodies. Mutated only under the
	// global binding cache lock.
	facts         FunctionBodyFacts
	factsKnown    bool
	nonVariable   TypeSymbol
	hasNonVarType bool
}

// NewSignature declares an overload returning a fixed type.
func NewSignature(returnType TypeSymbol, parameters ...*Parameter) *Signature {
	s := &Signature{returnKind: ReturnDeclared, returnType: returnType, parameters: parameters}
	s.computeArity()
	return s
}

// NewKindSignature declares an overload whose return type is computed
// by kind from its arguments.
func NewKindSignature(kind ReturnTypeKind, parameters ...*Parameter) *Signature {
	s := &Signature{returnKind: kind, parameters: parameters}
	s.computeArity()
	return s
}

// NewComputedSignature declares an overload whose return type comes
// from binding the body text.
func NewComputedSignature(body string, parameters ...*Parameter) *Signature {
	s := &Signature{returnKind: ReturnComputed, body: body, parameters: parameters}
	s.computeArity()
	return s
}

// NewCustomSignature declares an overload whose return type comes from
// the closure.
func NewCustomSignature(custom CustomReturnType, parameters ...*Parameter) *Signature {
	s := &Signature{returnKind: ReturnCustom, custom: custom, parameters: parameters}
	s.computeArity()
	return s
}

func (s *Signature) computeArity() {
	min, max := 0, 0
	for _, p := range s.parameters {
		max++
		if !p.optional {
			min++
		}
	}
	s.minArgs, s.maxArgs = min, max
}

// Repeatable marks the last parameter as repeatable up to maxArgs.
func (s *Signature) Repeatable(maxArgs int) *Signature {
	s.lastRepeatable = true
	s.maxArgs = maxArgs
	return s
}

func (s *Signature) Symbol() Symbol             { return s.symbol }
func (s *Signature) ReturnKind() ReturnTypeKind { return s.returnKind }
func (s *Signature) DeclaredReturnType() TypeSymbol {
	return s.returnType
}
func (s *Signature) Body() string                { return s.body }
func (s *Signature) Custom() CustomReturnType    { return s.custom }
func (s *Signature) Parameters() []*Parameter    { return s.parameters }
func (s *Signature) MinArgumentCount() int       { return s.minArgs }
func (s *Signature) MaxArgumentCount() int       { return s.maxArgs }
func (s *Signature) IsRepeatable() bool          { return s.lastRepeatable }

// Parameter maps an argument index to its formal parameter, accounting
// for a repeatable tail.
func (s *Signature) Parameter(argIndex int) *Parameter {
	if argIndex < len(s.parameters) {
		return s.parameters[argIndex]
	}
	if s.lastRepeatable && len(s.parameters) > 0 {
		return s.parameters[len(s.parameters)-1]
	}
	return nil
}

// ParameterByName finds a formal parameter by name.
func (s *Signature) ParameterByName(name string) (*Parameter, int, bool) {
	for i, p := range s.parameters {
		if strings.EqualFold(p.Name(), name) {
			return p, i, true
		}
	}
	return nil, -1, false
}

// BodyFacts returns the cached function-body facts, if computed.
func (s *Signature) BodyFacts() (FunctionBodyFacts, bool) { return s.facts, s.factsKnown }

// SetBodyFacts caches function-body facts. Call only under the global
// binding cache lock.
func (s *Signature) SetBodyFacts(f FunctionBodyFacts) {
	s.facts = f
	s.factsKnown = true
}

// NonVariableComputedReturnType returns the cached return type of a
// computed body whose schema does not vary with its arguments.
func (s *Signature) NonVariableComputedReturnType() (TypeSymbol, bool) {
	return s.nonVariable, s.hasNonVarType
}

// SetNonVariableComputedReturnType caches the invariant computed return
// type. Call only under the global binding cache lock.
func (s *Signature) SetNonVariableComputedReturnType(t TypeSymbol) {
	s.nonVariable = t
	s.hasNonVarType = true
}

func (s *Signature) attach(sym Symbol) { s.symbol = sym }
