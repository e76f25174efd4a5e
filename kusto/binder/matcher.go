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

package binder

import (
	"strings"

	"github.com/kustoql/go-kusto-server/kusto"
	"github.com/kustoql/go-kusto-server/kusto/syntax"
)

// MatchKind ranks how well an argument satisfies its parameter; higher
// is better.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchNotType
	MatchScalar
	MatchSummable
	MatchNumber
	MatchCompatible
	MatchPromoted
	MatchTabular
	MatchTable
	MatchDatabase
	MatchCluster
	MatchOneOfTwo
	MatchExact
)

// callArgument pairs an argument expression with its bound info and
// any named-argument routing.
type callArgument struct {
	expr syntax.Expression
	info *SemanticInfo
	name string
	star bool
}

// signatured is any symbol carrying an overload set.
type signatured interface {
	kusto.Symbol
	Signatures() []*kusto.Signature
}

// scoredSignature is one candidate with its per-argument kinds.
type scoredSignature struct {
	sig     *kusto.Signature
	mapping []int
	kinds   []MatchKind
	count   int
	full    bool
}

// GetBestMatchingSignature resolves the overload set against the bound
// arguments. The result is deterministic for a fixed signature set and
// argument types, independent of enumeration order. When no unique
// best exists every tied candidate is returned.
func (b *Binder) GetBestMatchingSignature(sym signatured, args []callArgument) []*scoredSignature {
	sigs := sym.Signatures()
	if len(sigs) == 0 {
		return nil
	}
	namedAllowed := namedArgumentsAllowed(sym)
	n := len(args)

	// Arity filter: exact range containment, else nearest by distance.
	var candidates []*kusto.Signature
	for _, s := range sigs {
		if n >= s.MinArgumentCount() && n <= s.MaxArgumentCount() {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		best := -1
		for _, s := range sigs {
			d := arityDistance(s, n)
			if best < 0 || d < best {
				best = d
			}
		}
		for _, s := range sigs {
			if arityDistance(s, n) == best {
				candidates = append(candidates, s)
			}
		}
	}

	// Score each candidate.
	scored := make([]*scoredSignature, 0, len(candidates))
	for _, s := range candidates {
		mapping := b.mapArgumentsToParameters(s, args, namedAllowed)
		kinds := make([]MatchKind, n)
		count := 0
		full := true
		for i := range args {
			kinds[i] = b.argumentMatchKind(s, args, mapping, i)
			if kinds[i] > MatchNone {
				count++
			} else {
				full = false
			}
		}
		scored = append(scored, &scoredSignature{sig: s, mapping: mapping, kinds: kinds, count: count, full: full})
	}

	// Keep the highest match count.
	maxCount := 0
	for _, s := range scored {
		if s.count > maxCount {
			maxCount = s.count
		}
	}
	var top []*scoredSignature
	for _, s := range scored {
		if s.count == maxCount {
			top = append(top, s)
		}
	}
	if len(top) <= 1 {
		return top
	}

	// A unique pairwise-best candidate wins.
	for _, c := range top {
		best := true
		for _, other := range top {
			if other == c {
				continue
			}
			if !betterThan(c, other) {
				best = false
				break
			}
		}
		if best {
			return []*scoredSignature{c}
		}
	}
	return top
}

func arityDistance(s *kusto.Signature, n int) int {
	if n < s.MinArgumentCount() {
		return s.MinArgumentCount() - n
	}
	if n > s.MaxArgumentCount() {
		return n - s.MaxArgumentCount()
	}
	return 0
}

// betterThan reports whether s1 strictly beats s2: s1 matches all
// arguments and s2 does not, or s1 is strictly better on every
// position where they differ.
func betterThan(s1, s2 *scoredSignature) bool {
	if s1.full && !s2.full {
		return true
	}
	if s2.full && !s1.full {
		return false
	}
	anyDiff := false
	for i := range s1.kinds {
		if s1.kinds[i] == s2.kinds[i] {
			continue
		}
		anyDiff = true
		if s1.kinds[i] < s2.kinds[i] {
			return false
		}
	}
	return anyDiff
}

func namedArgumentsAllowed(sym kusto.Symbol) bool {
	fn, ok := sym.(*kusto.FunctionSymbol)
	return ok && fn.NamedArgumentsAllowed()
}

// mapArgumentsToParameters maps each argument index to a parameter
// index; -1 marks arguments that route nowhere. Positional arguments
// map in order; named arguments (user functions only) route by name,
// and positional mapping resumes after in-order named arguments.
func (b *Binder) mapArgumentsToParameters(sig *kusto.Signature, args []callArgument, namedAllowed bool) []int {
	mapping := make([]int, len(args))
	nextPositional := 0
	params := sig.Parameters()
	for i, arg := range args {
		if arg.name != "" && namedAllowed {
			if _, idx, ok := sig.ParameterByName(arg.name); ok {
				mapping[i] = idx
				if idx == nextPositional {
					nextPositional++
				}
				continue
			}
			mapping[i] = -1
			continue
		}
		if nextPositional < len(params) {
			mapping[i] = nextPositional
			nextPositional++
		} else if sig.IsRepeatable() && len(params) > 0 {
			mapping[i] = len(params) - 1
		} else {
			mapping[i] = -1
		}
	}
	return mapping
}

// argumentMatchKind classifies one argument against its parameter.
func (b *Binder) argumentMatchKind(sig *kusto.Signature, args []callArgument, mapping []int, i int) MatchKind {
	arg := args[i]
	pi := mapping[i]
	if pi < 0 {
		return MatchNone
	}
	param := sig.Parameters()[pi]

	if param.ArgumentKind() == kusto.ArgumentStar {
		if arg.star {
			return MatchExact
		}
		return MatchNone
	}
	if arg.star {
		return MatchNone
	}

	argType := arg.info.ResultType
	if kusto.IsError(argType) {
		// Unresolved operands count as matching so a single bad
		// argument does not cascade into arity noise.
		return MatchExact
	}

	switch param.TypeKind() {
	case kusto.ParameterTypeDeclared:
		return declaredMatchKind(param.DeclaredTypes(), argType)

	case kusto.ParameterTypeScalar,
		kusto.ParameterTypeCommonScalar,
		kusto.ParameterTypeCommonScalarOrDynamic,
		kusto.ParameterTypeNotBool,
		kusto.ParameterTypeNotRealOrBool,
		kusto.ParameterTypeNotDynamic:
		s, ok := argType.(*kusto.ScalarType)
		if !ok {
			return MatchNone
		}
		switch param.TypeKind() {
		case kusto.ParameterTypeNotBool:
			if s == kusto.TypeBool {
				return MatchNone
			}
			return MatchNotType
		case kusto.ParameterTypeNotRealOrBool:
			if s == kusto.TypeBool || s == kusto.TypeReal {
				return MatchNone
			}
			return MatchNotType
		case kusto.ParameterTypeNotDynamic:
			if s == kusto.TypeDynamic {
				return MatchNone
			}
			return MatchNotType
		}
		return MatchScalar

	case kusto.ParameterTypeInteger:
		return scalarKindMatch(argType, func(s *kusto.ScalarType) bool { return s.IsInteger() }, MatchNumber)
	case kusto.ParameterTypeRealOrDecimal:
		return scalarKindMatch(argType, func(s *kusto.ScalarType) bool {
			return s == kusto.TypeReal || s == kusto.TypeDecimal
		}, MatchNumber)
	case kusto.ParameterTypeNumber, kusto.ParameterTypeCommonNumber:
		return scalarKindMatch(argType, (*kusto.ScalarType).IsNumeric, MatchNumber)
	case kusto.ParameterTypeSummable, kusto.ParameterTypeCommonSummable:
		return scalarKindMatch(argType, (*kusto.ScalarType).IsSummable, MatchSummable)

	case kusto.ParameterTypeStringOrDynamic:
		if argType == kusto.TypeString || argType == kusto.TypeDynamic {
			return MatchOneOfTwo
		}
		return MatchNone
	case kusto.ParameterTypeIntegerOrDynamic:
		if s, ok := argType.(*kusto.ScalarType); ok && (s.IsInteger() || s == kusto.TypeDynamic) {
			return MatchOneOfTwo
		}
		return MatchNone

	case kusto.ParameterTypeTabular:
		if _, ok := argType.(*kusto.TableSymbol); ok {
			return MatchTabular
		}
		return MatchNone
	case kusto.ParameterTypeSingleColumnTable:
		if t, ok := argType.(*kusto.TableSymbol); ok && len(t.Columns()) == 1 {
			return MatchTable
		}
		return MatchNone

	case kusto.ParameterTypeDatabase:
		if _, ok := arg.info.ReferencedSymbol.(*kusto.DatabaseSymbol); ok {
			return MatchDatabase
		}
		return MatchNone
	case kusto.ParameterTypeCluster:
		if _, ok := arg.info.ReferencedSymbol.(*kusto.ClusterSymbol); ok {
			return MatchCluster
		}
		return MatchNone

	case kusto.ParameterTypeParameter0, kusto.ParameterTypeParameter1, kusto.ParameterTypeParameter2:
		idx := int(param.TypeKind() - kusto.ParameterTypeParameter0)
		other := argTypeForParameter(args, mapping, idx)
		if other == nil {
			if _, ok := argType.(*kusto.ScalarType); ok {
				return MatchScalar
			}
			return MatchNone
		}
		return declaredMatchKind([]kusto.TypeSymbol{other}, argType)
	}
	return MatchNone
}

func scalarKindMatch(argType kusto.TypeSymbol, pred func(*kusto.ScalarType) bool, kind MatchKind) MatchKind {
	s, ok := argType.(*kusto.ScalarType)
	if !ok {
		return MatchNone
	}
	if s == kusto.TypeDynamic {
		return MatchScalar
	}
	if pred(s) {
		return kind
	}
	return MatchNone
}

func declaredMatchKind(declared []kusto.TypeSymbol, argType kusto.TypeSymbol) MatchKind {
	switch len(declared) {
	case 0:
		return MatchNone
	case 1:
		want := declared[0]
		if want == argType {
			return MatchExact
		}
		if t, ok := want.(*kusto.TableSymbol); ok {
			if a, ok := argType.(*kusto.TableSymbol); ok && kusto.IsTableAssignable(a, t, kusto.ConversionCompatible) {
				return MatchTable
			}
			return MatchNone
		}
		if kusto.IsPromotable(argType, want) {
			return MatchPromoted
		}
		if kusto.IsPromotable(want, argType) {
			return MatchCompatible
		}
		if want == kusto.TypeDynamic || argType == kusto.TypeDynamic {
			if _, ok := argType.(*kusto.ScalarType); ok {
				return MatchCompatible
			}
		}
		return MatchNone
	default:
		for _, want := range declared {
			if want == argType {
				return MatchOneOfTwo
			}
		}
		return MatchNone
	}
}

// argTypeForParameter finds the bound type of the argument routed to a
// parameter index.
func argTypeForParameter(args []callArgument, mapping []int, paramIdx int) kusto.TypeSymbol {
	for i, m := range mapping {
		if m == paramIdx {
			return args[i].info.ResultType
		}
	}
	return nil
}

// CheckSignature enforces the selected signature's declared argument
// rules: arity, named-argument discipline, type kinds, argument kinds,
// enumerated values and missing parameters.
func (b *Binder) CheckSignature(sym kusto.Symbol, scored *scoredSignature, args []callArgument, callSpan kusto.Span) []kusto.Diagnostic {
	var diags []kusto.Diagnostic
	sig := scored.sig
	namedAllowed := namedArgumentsAllowed(sym)

	if len(args) < sig.MinArgumentCount() || len(args) > sig.MaxArgumentCount() {
		diags = append(diags, kusto.NewDiagnostic(callSpan, kusto.ErrWrongNumberOfArguments,
			sym.Name(), sig.MinArgumentCount(), sig.MaxArgumentCount(), len(args)))
	}

	diags = append(diags, b.checkNamedArguments(sym, sig, args, namedAllowed)...)

	conversion := kusto.ConversionPromotable
	if namedAllowed {
		conversion = kusto.ConversionCompatible
	}

	seen := make(map[int]bool)
	for i, arg := range args {
		pi := scored.mapping[i]
		if pi < 0 {
			continue
		}
		seen[pi] = true
		param := sig.Parameters()[pi]

		if arg.star {
			if param.ArgumentKind() != kusto.ArgumentStar {
				diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrStarNotAllowed))
			} else if i != len(args)-1 {
				diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrStarMustBeLast))
			}
			continue
		}
		if kusto.IsError(arg.info.ResultType) {
			continue
		}

		if !b.parameterTypeAllows(sig, param, args, scored.mapping, i, conversion) {
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrWrongArgumentType,
				i+1, sym.Name(), kusto.TypeName(arg.info.ResultType), parameterTypeDisplay(param)))
			continue
		}
		diags = append(diags, b.checkArgumentKind(sym, param, arg, i)...)
	}

	for pi, param := range sig.Parameters() {
		if !param.IsOptional() && !seen[pi] {
			if len(args) >= sig.MinArgumentCount() && len(args) <= sig.MaxArgumentCount() {
				diags = append(diags, kusto.NewDiagnostic(callSpan, kusto.ErrMissingParameter, param.Name(), sym.Name()))
			}
		}
	}
	return diags
}

func (b *Binder) checkNamedArguments(sym kusto.Symbol, sig *kusto.Signature, args []callArgument, namedAllowed bool) []kusto.Diagnostic {
	var diags []kusto.Diagnostic
	usedNames := make(map[string]bool)
	outOfOrder := false
	nextPositional := 0
	for _, arg := range args {
		if arg.name == "" {
			if outOfOrder {
				diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrUnnamedArgumentAfterOutOfOrderNamed))
			}
			nextPositional++
			continue
		}
		if !namedAllowed {
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrNamedArgumentsNotSupported, sym.Name()))
			continue
		}
		lower := strings.ToLower(arg.name)
		if usedNames[lower] {
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrDuplicateNamedArgument, arg.name))
			continue
		}
		usedNames[lower] = true
		_, idx, ok := sig.ParameterByName(arg.name)
		if !ok {
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrUnknownNamedArgument, sym.Name(), arg.name))
			continue
		}
		if idx != nextPositional {
			outOfOrder = true
		} else {
			nextPositional++
		}
	}
	return diags
}

// parameterTypeAllows is the post-resolution strict type check.
func (b *Binder) parameterTypeAllows(sig *kusto.Signature, param *kusto.Parameter, args []callArgument, mapping []int, i int, conversion kusto.Conversion) bool {
	argType := args[i].info.ResultType
	switch param.TypeKind() {
	case kusto.ParameterTypeDeclared:
		for _, want := range param.DeclaredTypes() {
			if kusto.IsAssignable(argType, want, conversion) {
				return true
			}
		}
		return false
	case kusto.ParameterTypeScalar:
		return isScalar(argType)
	case kusto.ParameterTypeInteger:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool { return s.IsInteger() })
	case kusto.ParameterTypeRealOrDecimal:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool {
			return s == kusto.TypeReal || s == kusto.TypeDecimal
		})
	case kusto.ParameterTypeStringOrDynamic:
		return argType == kusto.TypeString || argType == kusto.TypeDynamic
	case kusto.ParameterTypeIntegerOrDynamic:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool {
			return s.IsInteger() || s == kusto.TypeDynamic
		})
	case kusto.ParameterTypeNumber, kusto.ParameterTypeCommonNumber:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool {
			return s.IsNumeric() || s == kusto.TypeDynamic
		})
	case kusto.ParameterTypeSummable, kusto.ParameterTypeCommonSummable:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool {
			return s.IsSummable() || s == kusto.TypeDynamic
		})
	case kusto.ParameterTypeNotBool:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool { return s != kusto.TypeBool })
	case kusto.ParameterTypeNotRealOrBool:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool {
			return s != kusto.TypeBool && s != kusto.TypeReal
		})
	case kusto.ParameterTypeNotDynamic:
		return isScalarWhere(argType, func(s *kusto.ScalarType) bool { return s != kusto.TypeDynamic })
	case kusto.ParameterTypeTabular:
		_, ok := argType.(*kusto.TableSymbol)
		return ok
	case kusto.ParameterTypeSingleColumnTable:
		t, ok := argType.(*kusto.TableSymbol)
		return ok && len(t.Columns()) == 1
	case kusto.ParameterTypeDatabase:
		_, ok := args[i].info.ReferencedSymbol.(*kusto.DatabaseSymbol)
		return ok
	case kusto.ParameterTypeCluster:
		_, ok := args[i].info.ReferencedSymbol.(*kusto.ClusterSymbol)
		return ok
	case kusto.ParameterTypeParameter0, kusto.ParameterTypeParameter1, kusto.ParameterTypeParameter2:
		idx := int(param.TypeKind() - kusto.ParameterTypeParameter0)
		other := argTypeForParameter(args, mapping, idx)
		if other == nil {
			return isScalar(argType)
		}
		return kusto.IsAssignable(argType, other, kusto.ConversionCompatible)
	case kusto.ParameterTypeCommonScalar, kusto.ParameterTypeCommonScalarOrDynamic:
		return isScalar(argType)
	}
	return true
}

func isScalar(t kusto.TypeSymbol) bool {
	_, ok := t.(*kusto.ScalarType)
	return ok
}

func isScalarWhere(t kusto.TypeSymbol, pred func(*kusto.ScalarType) bool) bool {
	s, ok := t.(*kusto.ScalarType)
	return ok && (pred(s) || s == kusto.TypeDynamic)
}

func (b *Binder) checkArgumentKind(sym kusto.Symbol, param *kusto.Parameter, arg callArgument, i int) []kusto.Diagnostic {
	var diags []kusto.Diagnostic
	switch param.ArgumentKind() {
	case kusto.ArgumentColumn:
		if _, ok := arg.info.ReferencedSymbol.(*kusto.Column); !ok {
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrColumnRequired, i+1, sym.Name()))
		}
	case kusto.ArgumentConstant:
		if !arg.info.Constant {
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrConstantRequired, i+1, sym.Name()))
		}
	case kusto.ArgumentLiteral, kusto.ArgumentLiteralNotEmpty:
		lit, ok := unwrapLiteral(arg.expr)
		if !ok {
			kind := kusto.ErrLiteralRequired
			if param.ArgumentKind() == kusto.ArgumentLiteralNotEmpty {
				kind = kusto.ErrLiteralNotEmptyRequired
			}
			diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kind, i+1, sym.Name()))
			break
		}
		if param.ArgumentKind() == kusto.ArgumentLiteralNotEmpty {
			if s, ok := lit.Value.(string); ok && s == "" {
				diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrLiteralNotEmptyRequired, i+1, sym.Name()))
			}
		}
	}
	if len(param.Values()) > 0 {
		if lit, ok := unwrapLiteral(arg.expr); ok {
			if !param.AcceptsValue(lit.Value) {
				diags = append(diags, kusto.NewDiagnostic(arg.expr.Span(), kusto.ErrValueNotAllowed,
					lit.Value, i+1, sym.Name(), valuesDisplay(param.Values())))
			}
		}
	}
	return diags
}

func unwrapLiteral(expr syntax.Expression) (*syntax.Literal, bool) {
	for {
		switch e := expr.(type) {
		case *syntax.Literal:
			return e, true
		case *syntax.ParenExpression:
			expr = e.Expr
		case *syntax.SimpleNamedExpression:
			expr = e.Expr
		default:
			return nil, false
		}
	}
}

func parameterTypeDisplay(param *kusto.Parameter) string {
	if param.TypeKind() == kusto.ParameterTypeDeclared {
		var names []string
		for _, t := range param.DeclaredTypes() {
			names = append(names, "'"+kusto.TypeName(t)+"'")
		}
		return strings.Join(names, " or ")
	}
	switch param.TypeKind() {
	case kusto.ParameterTypeScalar, kusto.ParameterTypeCommonScalar, kusto.ParameterTypeCommonScalarOrDynamic:
		return "a scalar value"
	case kusto.ParameterTypeInteger:
		return "an integer value"
	case kusto.ParameterTypeRealOrDecimal:
		return "a real or decimal value"
	case kusto.ParameterTypeStringOrDynamic:
		return "a string or dynamic value"
	case kusto.ParameterTypeIntegerOrDynamic:
		return "an integer or dynamic value"
	case kusto.ParameterTypeNumber, kusto.ParameterTypeCommonNumber:
		return "a numeric value"
	case kusto.ParameterTypeSummable, kusto.ParameterTypeCommonSummable:
		return "a summable value"
	case kusto.ParameterTypeTabular:
		return "a tabular value"
	case kusto.ParameterTypeSingleColumnTable:
		return "a single-column tabular value"
	case kusto.ParameterTypeDatabase:
		return "a database"
	case kusto.ParameterTypeCluster:
		return "a cluster"
	case kusto.ParameterTypeNotBool:
		return "a non-bool scalar value"
	case kusto.ParameterTypeNotRealOrBool:
		return "a scalar value other than real or bool"
	case kusto.ParameterTypeNotDynamic:
		return "a non-dynamic scalar value"
	default:
		return "a matching value"
	}
}

func valuesDisplay(values []interface{}) string {
	var out []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, "'"+s+"'")
		}
	}
	return strings.Join(out, ", ")
}
