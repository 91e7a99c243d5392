package tiktoken

import (
	"github.com/corebpe/tiktoken/internal/bpe"
	"github.com/corebpe/tiktoken/internal/loader"
	"github.com/corebpe/tiktoken/internal/registry"
)

// Plugin is a loadable vocabulary manifest record, persisted as one entry
// of plugins.json (spec.md §6).
type Plugin = registry.Plugin

// RegisterMergeableRanks registers a custom encoding built entirely from
// an in-memory rank map, bypassing the loader's file/network paths.
func RegisterMergeableRanks(name, pattern string, ranks map[string]Rank, specials map[string]Rank, explicitNVocab *int) error {
	bpeRanks := make(bpe.RankMap, len(ranks))
	for k, v := range ranks {
		bpeRanks[k] = v
	}
	v := &registry.Vocab{
		Name:           name,
		Pattern:        pattern,
		ExplicitNVocab: explicitNVocab,
		Specials:       specials,
		Loader:         &loader.MergeableRanksLoader{Ranks: bpeRanks},
	}
	return registry.Default().Register(name, v)
}

// RegisterTiktokenFile registers a custom encoding sourced from a local
// `.tiktoken` file.
func RegisterTiktokenFile(name, pattern, path string, specials map[string]Rank, explicitNVocab *int) error {
	v := &registry.Vocab{
		Name:           name,
		Pattern:        pattern,
		ExplicitNVocab: explicitNVocab,
		Specials:       specials,
		Loader:         &loader.TiktokenFileLoader{Path: path},
	}
	return registry.Default().Register(name, v)
}

// Unregister removes a previously registered non-built-in encoding.
func Unregister(name string) error { return registry.Default().Unregister(name) }

// RegisterAlias maps alias to an existing encoding name.
func RegisterAlias(alias, name string) { registry.Default().RegisterAlias(alias, name) }

// RegisterPrefix maps a model-name prefix to an existing encoding name.
func RegisterPrefix(prefix, name string) { registry.Default().RegisterPrefix(prefix, name) }

// ResetRegistry restores the built-in vocabs/aliases/prefixes and unloads
// every plugin.
func ResetRegistry() { registry.Default().Reset() }

// LoadPlugin registers a plugin manifest entry, rejecting duplicate ids.
func LoadPlugin(p Plugin) error { return registry.Default().LoadPlugin(p) }

// UnloadPlugin removes a plugin manifest entry, rejecting unknown ids.
func UnloadPlugin(id string) error { return registry.Default().UnloadPlugin(id) }

// Plugins returns every currently loaded plugin manifest, sorted by id.
func Plugins() []Plugin { return registry.Default().Plugins() }

// LoadConfigFile reads a YAML registry seed file (vocabs/aliases/prefixes)
// and registers everything it names into the default registry. path may be
// empty, in which case this is a no-op — seeding from a config file is
// always optional.
func LoadConfigFile(path string) error {
	cfg, err := registry.LoadConfigFile(path)
	if err != nil {
		return err
	}
	return registry.Default().ApplyConfig(cfg)
}
