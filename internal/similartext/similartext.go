// Copyright 2020-2021 Dolthub, Inc.
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

// Package similartext implements "maybe you mean" suggestions based on
// Levenshtein distance over the names in scope.
package similartext

import (
	"fmt"
	"reflect"
	"strings"
)

// DistanceForStrings returns the edit distance between source and
// target using the classic dynamic programming algorithm.
func DistanceForStrings(source, target []rune) int {
	height := len(source) + 1
	width := len(target) + 1
	matrix := make([]int, height*width)
	for i := 0; i < height; i++ {
		matrix[i*width] = i
	}
	for j := 0; j < width; j++ {
		matrix[j] = j
	}
	for i := 1; i < height; i++ {
		for j := 1; j < width; j++ {
			cost := 1
			if source[i-1] == target[j-1] {
				cost = 0
			}
			deletion := matrix[(i-1)*width+j] + 1
			insertion := matrix[i*width+j-1] + 1
			substitution := matrix[(i-1)*width+j-1] + cost
			matrix[i*width+j] = min(deletion, min(insertion, substitution))
		}
	}
	return matrix[height*width-1]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// maxDistanceIgnored is the edit distance from which suggestions are
// considered too different to be helpful.
const maxDistanceIgnored = 3

// Find returns a string with suggestions for name using the list of
// names given, or an empty string when nothing is close enough.
func Find(names []string, name string) string {
	if len(name) == 0 {
		return ""
	}

	minDistance := -1
	var matches []string
	for _, n := range names {
		dist := DistanceForStrings(
			[]rune(strings.ToLower(n)), []rune(strings.ToLower(name)))
		if dist >= maxDistanceIgnored {
			continue
		}
		if minDistance == -1 || dist < minDistance {
			minDistance = dist
			matches = []string{n}
		} else if dist == minDistance {
			matches = append(matches, n)
		}
	}

	if len(matches) == 0 {
		return ""
	}

	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap does the same as Find but taking a map instead of a
// string slice as first argument.
func FindFromMap(names interface{}, name string) string {
	rv := reflect.ValueOf(names)
	if rv.Kind() != reflect.Map {
		panic("expecting map")
	}

	var keys []string
	for _, k := range rv.MapKeys() {
		if k.Kind() != reflect.String {
			panic("expecting string keys in map")
		}
		keys = append(keys, k.String())
	}

	return Find(keys, name)
}
