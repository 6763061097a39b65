package expand

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/dupl/duplicate"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".dupl.yaml"

// Config is the content of a .dupl.yaml file.
type Config struct {
	// Extensions of template files. The extension is dropped to get the name
	// of the generated file: ints.go.dup generates ints.go.
	Extensions []string `yaml:"extensions"`
	// Format runs generated Go files through gofmt.
	Format bool `yaml:"format"`
	// Header is written on top of every generated file.
	Header string `yaml:"header"`
	// Separator is put between duplicates that would otherwise share a line.
	Separator     string        `yaml:"separator"`
	MinimalErrors bool          `yaml:"minimal_errors"`
	Keywords      KeywordConfig `yaml:"keywords"`
	Modules       ModulesConfig `yaml:"modules"`
}

// KeywordConfig names the invocations recognized in templates.
type KeywordConfig struct {
	Duplicate      string `yaml:"duplicate"`
	Substitute     string `yaml:"substitute"`
	DuplicateItem  string `yaml:"duplicate_item"`
	SubstituteItem string `yaml:"substitute_item"`
}

// ModulesConfig controls renaming of duplicated module declarations.
type ModulesConfig struct {
	Disambiguate bool     `yaml:"disambiguate"`
	Keywords     []string `yaml:"keywords"`
}

func DefaultConfig() Config {
	return Config{
		Extensions: []string{".dup"},
		Format:     true,
		Header:     "// Code generated by dupl. DO NOT EDIT.",
		Separator:  "\n",
		Keywords: KeywordConfig{
			Duplicate:      "duplicate",
			Substitute:     "substitute",
			DuplicateItem:  "duplicate_item",
			SubstituteItem: "substitute_item",
		},
		Modules: ModulesConfig{
			Disambiguate: true,
			Keywords:     []string{"mod"},
		},
	}
}

// LoadConfig reads the configuration at path on top of the defaults. A
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}
	return config, nil
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// Options returns the engine options matching the configuration.
func (c Config) Options() []duplicate.Option {
	opts := []duplicate.Option{
		duplicate.WithNestedKeywords(c.Keywords.Duplicate, c.Keywords.Substitute),
		duplicate.WithModuleKeywords(c.Modules.Keywords...),
		duplicate.WithCopySeparator(c.Separator),
	}
	if !c.Modules.Disambiguate {
		opts = append(opts, duplicate.WithoutModuleDisambiguation())
	}
	return opts
}
