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
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru"
	"github.com/mitchellh/hashstructure"

	"github.com/kustoql/go-kusto-server/kusto"
)

const (
	unificationCacheSize = 4096
	expansionCacheSize   = 1024
)

// GlobalBindingCache holds results that are valid across bindings of
// the same catalog snapshot: column unification tables keyed by ordered
// table lists, and expansions of database functions whose schema
// depends only on argument types. One coarse mutex guards all of it;
// the public entry points acquire the lock for the whole binding.
type GlobalBindingCache struct {
	mu           sync.Mutex
	unifications *lru.Cache
	expansions   *lru.Cache
}

func NewGlobalBindingCache() *GlobalBindingCache {
	u, _ := lru.New(unificationCacheSize)
	e, _ := lru.New(expansionCacheSize)
	return &GlobalBindingCache{unifications: u, expansions: e}
}

// Lock acquires the cache lock for the duration of a binding.
func (c *GlobalBindingCache) Lock()   { c.mu.Lock() }
func (c *GlobalBindingCache) Unlock() { c.mu.Unlock() }

func (c *GlobalBindingCache) unification(key uint64) (*kusto.TableSymbol, bool) {
	v, ok := c.unifications.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*kusto.TableSymbol), true
}

func (c *GlobalBindingCache) addUnification(key uint64, table *kusto.TableSymbol) {
	c.unifications.Add(key, table)
}

func (c *GlobalBindingCache) expansion(key uint64) (*Expansion, bool) {
	v, ok := c.expansions.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Expansion), true
}

func (c *GlobalBindingCache) addExpansion(key uint64, e *Expansion) {
	c.expansions.Add(key, e)
}

// globalCaches maps catalog snapshots to their binding cache. Entries
// are never removed: the map keeps each snapshot and its cache alive
// for the life of the process.
var globalCaches sync.Map // *kusto.GlobalState -> *GlobalBindingCache

func cacheForGlobals(globals *kusto.GlobalState) *GlobalBindingCache {
	if v, ok := globalCaches.Load(globals); ok {
		return v.(*GlobalBindingCache)
	}
	v, _ := globalCaches.LoadOrStore(globals, NewGlobalBindingCache())
	return v.(*GlobalBindingCache)
}

// LocalBindingCache is per top-level Bind call: the signatures
// currently being inline-expanded (cycle detection) plus call-site
// expansions that must not outlive the binding.
type LocalBindingCache struct {
	expanding  map[*kusto.Signature]struct{}
	expansions map[uint64]*Expansion
}

func NewLocalBindingCache() *LocalBindingCache {
	return &LocalBindingCache{
		expanding:  make(map[*kusto.Signature]struct{}),
		expansions: make(map[uint64]*Expansion),
	}
}

func (c *LocalBindingCache) isExpanding(sig *kusto.Signature) bool {
	_, ok := c.expanding[sig]
	return ok
}

func (c *LocalBindingCache) beginExpansion(sig *kusto.Signature) { c.expanding[sig] = struct{}{} }
func (c *LocalBindingCache) endExpansion(sig *kusto.Signature)   { delete(c.expanding, sig) }

func (c *LocalBindingCache) expansion(key uint64) (*Expansion, bool) {
	e, ok := c.expansions[key]
	return e, ok
}

func (c *LocalBindingCache) addExpansion(key uint64, e *Expansion) {
	c.expansions[key] = e
}

// unificationKey hashes an ordered table list plus the strategy tag.
// Table identity, not content: catalog tables are stable per snapshot.
func unificationKey(strategy string, tables []*kusto.TableSymbol) uint64 {
	var b strings.Builder
	b.WriteString(strategy)
	for _, t := range tables {
		fmt.Fprintf(&b, "|%p", t)
	}
	return xxhash.Sum64String(b.String())
}

// fingerprintArg is one entry of a call-site fingerprint.
type fingerprintArg struct {
	Name     string
	Type     string
	Constant bool
	Value    string
}

// callSiteFingerprint identifies an expansion: the signature plus every
// parameter's name, bound type, constant-ness and constant value. Two
// call sites with equal fingerprints share one expansion.
func callSiteFingerprint(sig *kusto.Signature, args []fingerprintArg) uint64 {
	v := struct {
		Signature string
		Args      []fingerprintArg
	}{
		Signature: fmt.Sprintf("%p", sig),
		Args:      args,
	}
	key, err := hashstructure.Hash(v, nil)
	if err != nil {
		// hashstructure only fails on unhashable kinds, which the
		// fingerprint struct cannot contain.
		return 0
	}
	return key
}
