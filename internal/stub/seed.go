package stub

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moamenhredeen/el-confluence/internal/confluence"
)

// seedFile is the YAML document the stub loads pages from at startup.
type seedFile struct {
	Pages []seedPage `yaml:"pages"`
}

type seedPage struct {
	ID      string `yaml:"id"`
	Space   string `yaml:"space"`
	Title   string `yaml:"title"`
	Version int    `yaml:"version"`
	Body    string `yaml:"body"`
}

// Seed loads pages from the YAML file at path into the store, replacing any
// existing page with the same ID. Returns the number of pages loaded.
func Seed(store *PageStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	now := time.Now().Unix()
	for i, p := range seed.Pages {
		if p.ID == "" {
			return i, fmt.Errorf("seed page %d: missing id", i)
		}
		version := p.Version
		if version < 1 {
			version = 1
		}
		page := &confluence.Page{
			ID:      p.ID,
			Type:    "page",
			Title:   p.Title,
			Space:   confluence.Space{Key: p.Space},
			Version: confluence.Version{Number: version},
			Body: confluence.Body{
				Storage: confluence.Storage{Value: p.Body, Representation: "storage"},
			},
		}
		if err := store.Put(page, now); err != nil {
			return i, fmt.Errorf("seed page %s: %w", p.ID, err)
		}
	}

	return len(seed.Pages), nil
}
