// Package registry holds the process-wide set of named vocabularies,
// model aliases, and prefix aliases, and resolves caller-supplied
// identifiers to a (Vocab, Loader) pair, per spec.md §4.8.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/corebpe/tiktoken/internal/bpe"
	"github.com/corebpe/tiktoken/internal/loader"
	"github.com/corebpe/tiktoken/internal/obslog"
)

var log = obslog.Default()

// Vocab is the registry's immutable vocab descriptor (spec.md §3).
type Vocab struct {
	Name           string
	Pattern        string
	ExplicitNVocab *int
	Specials       map[string]bpe.Rank
	Loader         loader.Loader
}

// Plugin is the minimal manifest record persisted to plugins.json.
type Plugin struct {
	Identifier string `json:"identifier"`
	Version    string `json:"version"`
	Summary    string `json:"summary"`
}

type entry struct {
	vocab   *Vocab
	builtin bool
}

// Registry is a mutex-guarded holder of vocabs, aliases, prefixes, and
// active plugins. The zero value is not usable; use New.
type Registry struct {
	mu sync.Mutex

	vocabs  map[string]entry
	aliases map[string]aliasEntry
	prefix  map[string]aliasEntry
	plugins map[string]Plugin

	builtinVocabNames map[string]struct{}
}

type aliasEntry struct {
	target  string
	builtin bool
}

// New constructs a Registry seeded with the seven built-in encodings and
// their model aliases/prefixes.
func New() *Registry {
	r := &Registry{}
	r.seedBuiltins()
	return r
}

func (r *Registry) seedBuiltins() {
	r.vocabs = map[string]entry{}
	r.aliases = map[string]aliasEntry{}
	r.prefix = map[string]aliasEntry{}
	r.plugins = map[string]Plugin{}
	r.builtinVocabNames = map[string]struct{}{}

	for name, v := range builtinVocabs() {
		r.vocabs[name] = entry{vocab: v, builtin: true}
		r.builtinVocabNames[name] = struct{}{}
	}
	for alias, target := range builtinAliases() {
		r.aliases[alias] = aliasEntry{target: target, builtin: true}
	}
	for prefix, target := range builtinPrefixes() {
		r.prefix[prefix] = aliasEntry{target: target, builtin: true}
	}
}

// Register inserts or replaces a vocab. Replacing a built-in's loader is
// rejected; replacing its pattern/specials is allowed only for non-builtins.
func (r *Registry) Register(name string, v *Vocab) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.vocabs[name]; ok && existing.builtin {
		log.Warn("rejected attempt to replace a built-in encoding", "name", name)
		return fmt.Errorf("registry: %q is a built-in encoding and cannot be replaced", name)
	}
	r.vocabs[name] = entry{vocab: v, builtin: false}
	log.Info("registered vocab", "name", name)
	return nil
}

// Unregister removes a non-built-in vocab.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.vocabs[name]
	if !ok {
		return fmt.Errorf("registry: %q is not registered", name)
	}
	if e.builtin {
		return fmt.Errorf("registry: %q is a built-in encoding and cannot be unregistered", name)
	}
	delete(r.vocabs, name)
	log.Info("unregistered vocab", "name", name)
	return nil
}

// RegisterAlias maps alias to an encoding name.
func (r *Registry) RegisterAlias(alias, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = aliasEntry{target: name}
}

// UnregisterAlias removes a non-built-in alias, restoring the built-in
// mapping if one existed rather than leaving the alias unresolved.
func (r *Registry) UnregisterAlias(alias string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if builtinTarget, ok := builtinAliases()[alias]; ok {
		r.aliases[alias] = aliasEntry{target: builtinTarget, builtin: true}
		return
	}
	delete(r.aliases, alias)
}

// RegisterPrefix maps a prefix to an encoding name.
func (r *Registry) RegisterPrefix(prefix, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefix[prefix] = aliasEntry{target: name}
}

// UnregisterPrefix removes a non-built-in prefix, restoring the built-in
// mapping if one existed.
func (r *Registry) UnregisterPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if builtinTarget, ok := builtinPrefixes()[prefix]; ok {
		r.prefix[prefix] = aliasEntry{target: builtinTarget, builtin: true}
		return
	}
	delete(r.prefix, prefix)
}

// Resolve looks up identifier: exact vocab name, then alias, then the
// longest registered prefix that starts identifier (spec.md §9's open
// question, decided in favor of longest-prefix-wins for determinism).
func (r *Registry) Resolve(identifier string) (*Vocab, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.vocabs[identifier]; ok {
		return e.vocab, true
	}
	if a, ok := r.aliases[identifier]; ok {
		if e, ok := r.vocabs[a.target]; ok {
			return e.vocab, true
		}
	}

	var bestPrefix, bestTarget string
	found := false
	for prefix, a := range r.prefix {
		if !strings.HasPrefix(identifier, prefix) {
			continue
		}
		if !found || len(prefix) > len(bestPrefix) {
			bestPrefix = prefix
			bestTarget = a.target
			found = true
		}
	}
	if found {
		if e, ok := r.vocabs[bestTarget]; ok {
			return e.vocab, true
		}
	}
	return nil, false
}

// Reset restores built-in names/aliases/prefixes and unloads all plugins.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedBuiltins()
}

// Names returns every currently registered vocab name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.vocabs))
	for name := range r.vocabs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadPlugin registers a plugin manifest, rejecting duplicate identifiers.
func (r *Registry) LoadPlugin(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[p.Identifier]; ok {
		log.Warn("rejected duplicate plugin load", "identifier", p.Identifier)
		return fmt.Errorf("registry: plugin %q already loaded", p.Identifier)
	}
	r.plugins[p.Identifier] = p
	log.Info("loaded plugin", "identifier", p.Identifier, "version", p.Version)
	return nil
}

// UnloadPlugin removes a plugin manifest, rejecting unknown identifiers.
func (r *Registry) UnloadPlugin(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[id]; !ok {
		return fmt.Errorf("registry: plugin %q is not loaded", id)
	}
	delete(r.plugins, id)
	log.Info("unloaded plugin", "identifier", id)
	return nil
}

// Plugins returns a snapshot of currently loaded plugin manifests, sorted
// by identifier.
func (r *Registry) Plugins() []Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide lazily-initialized registry singleton,
// per spec.md §9's "global singleton registry" design note.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = New() })
	return defaultReg
}
