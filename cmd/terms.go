package main

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultTerms are the popular searches ingested when no term list is
// supplied.
var defaultTerms = []string{
	"Le Male Elixir", "Dior Sauvage", "Bleu de Chanel", "Acqua di Gio", "Creed Aventus",
	"1 Million", "La Vie Est Belle", "Black Opium", "Armani Code", "Good Girl",
	"Invictus", "Alien", "L'interdit", "Light Blue", "Eros", "Angel", "YSL Libre",
	"Tom Ford Noir", "Gucci Bloom", "Boss Bottled",
}

type termsFile struct {
	Terms []string `yaml:"terms"`
}

// loadTermsFile reads a yaml file of the form `terms: [...]`.
func loadTermsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read terms file %s", path)
	}

	var tf termsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, eris.Wrapf(err, "parse terms file %s", path)
	}
	if len(tf.Terms) == 0 {
		return nil, eris.Errorf("terms file %s contains no terms", path)
	}
	return tf.Terms, nil
}

// resolveTerms picks the term list: explicit --term flags win, then a
// terms file (flag over config), then the built-in defaults.
func resolveTerms(flagTerms []string, flagFile, cfgFile string) ([]string, error) {
	if len(flagTerms) > 0 {
		return flagTerms, nil
	}

	path := flagFile
	if path == "" {
		path = cfgFile
	}
	if path != "" {
		return loadTermsFile(path)
	}

	return defaultTerms, nil
}
