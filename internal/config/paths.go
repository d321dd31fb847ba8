package config

import "path/filepath"

// Paths is the directory layout under a project root.
type Paths struct {
	Root      string
	Raw       string // data/raw: input CSVs
	Cache     string // data/cache
	Processed string // data/processed: parquet outputs, run metadata
	External  string // data/external
	Reports   string // reports: missingness CSV
}

// MakePaths derives the layout from root.
func MakePaths(root string) Paths {
	data := filepath.Join(root, "data")
	return Paths{
		Root:      root,
		Raw:       filepath.Join(data, "raw"),
		Cache:     filepath.Join(data, "cache"),
		Processed: filepath.Join(data, "processed"),
		External:  filepath.Join(data, "external"),
		Reports:   filepath.Join(root, "reports"),
	}
}
