package benchmark

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/logging"
)

// SeedFile is the YAML layout read by Seed. UFLPA entries are raw entity
// list lines such as "Acme Textile Co., Ltd. (also known as Acme Tex)".
type SeedFile struct {
	Companies []Company `yaml:"companies"`
	UFLPA     struct {
		Listed   string   `yaml:"listed"`
		Entities []string `yaml:"entities"`
	} `yaml:"uflpa"`
}

const uflpaReason = "Listed on UFLPA Entity List. Subject to rebuttable presumption of forced labor under 19 U.S.C. § 1307."

var (
	aliasPattern = regexp.MustCompile(`(?i)\((?:also known as|formerly known as|including \w+ aliases?):?\s*([^)]+)\)`)
	aliasSplit   = regexp.MustCompile(`;\s*(?:and\s+)?|,\s*and\s+|\s+and\s+`)

	// entityPattern is what a listed brand must contain; preamble and
	// section headings of the list do not.
	entityPattern = regexp.MustCompile(`(?i)Co\.|Ltd\.|Inc\.|Corp\.|Group|Center|Park|Holdings|` +
		`Technology|Industry|Trading|Corporation|Mine|Mining|` +
		`Textile|Silicon|Energy|Semiconductor|Foods|Logistics|XPCC|Ninestar|Camel`)
)

// ParseEntity turns one UFLPA entity list line into a brand and its aliases.
// ok is false for lines too short to name an entity or without a company
// name in them.
func ParseEntity(raw string) (brand string, aliases []string, ok bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	if len(raw) < 5 {
		return "", nil, false
	}

	if loc := aliasPattern.FindStringSubmatchIndex(raw); loc != nil {
		for _, p := range aliasSplit.Split(raw[loc[2]:loc[3]], -1) {
			p = strings.Trim(strings.TrimSpace(p), ";,")
			if len(p) > 3 {
				aliases = append(aliases, p)
			}
		}
		brand = raw[:loc[0]]
	} else {
		brand = raw
	}
	brand = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(brand), ".,;("))
	if len(brand) < 5 || !entityPattern.MatchString(brand) {
		return "", nil, false
	}
	return brand, aliases, true
}

// LoadSeed parses a seed file into companies, expanding UFLPA lines.
// Entities repeated (by brand key) are kept once, first occurrence wins.
func LoadSeed(path string) ([]Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}

	seen := make(map[string]bool)
	var out []Company
	add := func(c Company) {
		k := Key(c.Brand)
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, c)
	}

	for _, c := range f.Companies {
		add(c)
	}
	for _, line := range f.UFLPA.Entities {
		brand, aliases, ok := ParseEntity(line)
		if !ok {
			continue
		}
		add(Company{
			Brand:             brand,
			Aliases:           aliases,
			ProductCategories: []string{"general"},
			Countries:         []string{"CN"},
			RiskLevel:         assessor.RiskHigh,
			Sources:           []string{"UFLPA"},
			Reason:            uflpaReason,
			LastUpdated:       f.UFLPA.Listed,
		})
	}
	return out, nil
}

// Seed loads path into store and returns how many companies were written.
func Seed(ctx context.Context, store *Store, path string) (int, error) {
	companies, err := LoadSeed(path)
	if err != nil {
		return 0, err
	}
	for i, c := range companies {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := store.Upsert(ctx, c); err != nil {
			return i, err
		}
	}
	store.logger.Info("benchmark seeded",
		logging.Field{Key: "path", Value: path},
		logging.Field{Key: "companies", Value: len(companies)})
	return len(companies), nil
}

// SeedIfEmpty seeds store from path only when it holds no companies. A store
// that cannot be counted is left alone and reported at warn level.
func SeedIfEmpty(ctx context.Context, store *Store, path string) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		store.logger.Warn("skipping benchmark seed: counting companies failed",
			logging.Field{Key: "path", Value: path}, logging.Err(err))
		return 0, nil
	}
	if n > 0 {
		store.logger.Debug("benchmark already populated, not seeding",
			logging.Field{Key: "companies", Value: n})
		return 0, nil
	}
	return Seed(ctx, store, path)
}
