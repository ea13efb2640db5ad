package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/seatmap-editor/internal/editor"
)

// tierFile is the YAML layout accepted by --tiers:
//
//	tiers:
//	  - ranges: "Stalls A1-A10, Circle ROW 3 - 89-93"
//	    price: 65
//	  - ranges: "Stalls B1-B20"
//	    price: 45
type tierFile struct {
	Tiers []editor.Group `yaml:"tiers"`
}

func loadTiers(path string) ([]editor.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf tierFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(tf.Tiers) == 0 {
		return nil, fmt.Errorf("%s: no tiers defined", path)
	}
	return tf.Tiers, nil
}

// parseTier reads a --tier value "RANGES=PRICE", split at the last "=".
func parseTier(v string) (editor.Group, error) {
	i := strings.LastIndex(v, "=")
	if i < 0 {
		return editor.Group{}, fmt.Errorf("tier %q: want RANGES=PRICE", v)
	}
	g := editor.Group{
		RangeText: strings.TrimSpace(v[:i]),
		Price:     strings.TrimSpace(v[i+1:]),
	}
	if g.RangeText == "" {
		return editor.Group{}, fmt.Errorf("tier %q: empty range text", v)
	}
	return g, nil
}
