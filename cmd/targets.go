package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// targetsFile lists the cities for a multi-city harvest:
//
//	cities:
//	  - Austin, TX
//	  - Boise, ID
type targetsFile struct {
	Cities []string `yaml:"cities"`
}

// loadTargets reads and normalizes a targets file. Blank and repeated
// entries are dropped; order is kept.
func loadTargets(path string) (*targetsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "targets: read %s", path)
	}

	var raw targetsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "targets: parse %s", path)
	}

	seen := make(map[string]bool, len(raw.Cities))
	out := &targetsFile{}
	for _, c := range raw.Cities {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Cities = append(out.Cities, c)
	}
	if len(out.Cities) == 0 {
		return nil, eris.Errorf("targets: %s lists no cities", path)
	}
	return out, nil
}
