package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corebpe/tiktoken/internal/bpe"
	"github.com/corebpe/tiktoken/internal/loader"
)

// FileConfig is an optional YAML seed file for extra vocab descriptors and
// aliases, read at startup in addition to the built-ins. Mirrored from
// samcharles93-mantle/cmd/mantle/config.go's plain-struct yaml.Unmarshal
// pattern.
type FileConfig struct {
	Vocabs   []VocabConfig     `yaml:"vocabs"`
	Aliases  map[string]string `yaml:"aliases"`
	Prefixes map[string]string `yaml:"prefixes"`
}

// VocabConfig describes one custom encoding sourced from a .tiktoken file
// on disk — the only loader variant expressible from a config file.
type VocabConfig struct {
	Name           string           `yaml:"name"`
	Pattern        string           `yaml:"pattern"`
	ExplicitNVocab *int             `yaml:"explicit_n_vocab"`
	Specials       map[string]int64 `yaml:"specials"`
	TiktokenFile   string           `yaml:"tiktoken_file"`
}

// LoadConfigFile reads a YAML registry seed file. Returns a zero FileConfig
// if path is empty or the file doesn't exist — seeding from a config file
// is always optional.
func LoadConfigFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return FileConfig{}, nil
	}
	if err != nil {
		return FileConfig{}, fmt.Errorf("registry: read config %s: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("registry: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyConfig registers every vocab/alias/prefix named in cfg into r.
func (r *Registry) ApplyConfig(cfg FileConfig) error {
	for _, vc := range cfg.Vocabs {
		if vc.TiktokenFile == "" {
			return fmt.Errorf("registry: config vocab %q has no tiktoken_file", vc.Name)
		}
		specials := make(map[string]bpe.Rank, len(vc.Specials))
		for lit, id := range vc.Specials {
			specials[lit] = bpe.Rank(id)
		}
		v := &Vocab{
			Name:           vc.Name,
			Pattern:        vc.Pattern,
			ExplicitNVocab: vc.ExplicitNVocab,
			Specials:       specials,
			Loader:         &loader.TiktokenFileLoader{Path: vc.TiktokenFile},
		}
		if err := r.Register(vc.Name, v); err != nil {
			return err
		}
	}
	for alias, target := range cfg.Aliases {
		r.RegisterAlias(alias, target)
	}
	for prefix, target := range cfg.Prefixes {
		r.RegisterPrefix(prefix, target)
	}
	return nil
}
