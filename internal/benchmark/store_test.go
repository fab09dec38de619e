package benchmark_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/benchmark"
	"github.com/raysh454/ethicheck/internal/testutil"
)

func newStore(t *testing.T) *benchmark.Store {
	t.Helper()
	s, err := benchmark.Open(filepath.Join(t.TempDir(), "bench.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestStore_UpsertLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	c := benchmark.Company{
		Brand:         "Acme Apparel",
		Aliases:       []string{"ACME", "Acme Apparel Group"},
		Countries:     []string{"BD", "VN"},
		RiskLevel:     assessor.RiskModerate,
		Sources:       []string{"KnowTheChain"},
		Reason:        "Scored 41/100 in the apparel benchmark.",
		KTCScore:      ptr(41.0),
		KTCRank:       ptr(18),
		BenchmarkYear: ptr(2023),
		Themes:        &assessor.Themes{Recruitment: 22, Remedy: 5},
		SourceURL:     "https://knowthechain.org/benchmark",
	}
	if err := s.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	for _, name := range []string{"acme apparel", "  ACME   Apparel ", "acme", "Acme Apparel Group"} {
		got, err := s.Lookup(ctx, name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		want := c
		want.Aliases = []string{"ACME", "Acme Apparel Group"}
		if diff := cmp.Diff(&want, got); diff != "" {
			t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", name, diff)
		}
	}

	if _, err := s.Lookup(ctx, "Globex"); !errors.Is(err, benchmark.ErrNotFound) {
		t.Errorf("Lookup(Globex) err = %v, want ErrNotFound", err)
	}
}

func TestStore_UpsertReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	if err := s.Upsert(ctx, benchmark.Company{Brand: "Globex", Aliases: []string{"Globex Corp"}, RiskLevel: assessor.RiskLow}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, benchmark.Company{Brand: "GLOBEX", RiskLevel: assessor.RiskHigh, Reason: "updated"}); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}
	got, err := s.Lookup(ctx, "globex")
	if err != nil {
		t.Fatal(err)
	}
	if got.RiskLevel != assessor.RiskHigh || got.Reason != "updated" || got.KTCScore != nil {
		t.Errorf("unexpected row %+v", got)
	}
	if _, err := s.Lookup(ctx, "Globex Corp"); !errors.Is(err, benchmark.ErrNotFound) {
		t.Errorf("old alias should be gone, err = %v", err)
	}
}

func TestStore_RejectsEmptyBrand(t *testing.T) {
	t.Parallel()
	if err := newStore(t).Upsert(context.Background(), benchmark.Company{Brand: "  "}); err == nil {
		t.Error("expected error for empty brand")
	}
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()
	s, err := benchmark.Open(":memory:", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Upsert(context.Background(), benchmark.Company{Brand: "Initech"}); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(context.Background()); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

const seedYAML = `
companies:
  - brand: Acme Apparel
    risk_level: moderate
    reason: Scored 41/100.
    ktc_score: 41
    ktc_rank: 18
    benchmark_year: 2023
    themes:
      commitment_governance: 60
      remedy: 5
uflpa:
  listed: "2025-01-15"
  entities:
    - "Hoshine Silicon Industry Co., Ltd. (also known as Hesheng Silicon Industry; and Hoshine Silicon)"
    - "Xinjiang Zhongtai Chemical Co., Ltd."
    - "Acme Apparel"
    - "x"
`

func TestSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := benchmark.Seed(ctx, s, path)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 3 {
		t.Errorf("seeded %d companies, want 3", n)
	}

	acme, err := s.Lookup(ctx, "acme apparel")
	if err != nil {
		t.Fatal(err)
	}
	if acme.RiskLevel != assessor.RiskModerate || acme.Themes == nil || acme.Themes.CommitmentGovernance != 60 {
		t.Errorf("YAML company should win over the UFLPA duplicate, got %+v", acme)
	}

	hoshine, err := s.Lookup(ctx, "Hesheng Silicon Industry")
	if err != nil {
		t.Fatalf("alias lookup: %v", err)
	}
	if hoshine.Brand != "Hoshine Silicon Industry Co., Ltd" || hoshine.RiskLevel != assessor.RiskHigh || hoshine.LastUpdated != "2025-01-15" {
		t.Errorf("unexpected UFLPA row %+v", hoshine)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := &testutil.DummyLogger{}
	s, err := benchmark.Open(filepath.Join(t.TempDir(), "bench.db"), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n, err := benchmark.SeedIfEmpty(ctx, s, path); err != nil || n != 3 {
		t.Fatalf("first SeedIfEmpty = %d, %v; want 3, nil", n, err)
	}
	if n, err := benchmark.SeedIfEmpty(ctx, s, path); err != nil || n != 0 {
		t.Errorf("populated store: SeedIfEmpty = %d, %v; want 0, nil", n, err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if n, err := benchmark.SeedIfEmpty(ctx, s, path); err != nil || n != 0 {
		t.Errorf("closed store: SeedIfEmpty = %d, %v; want 0, nil", n, err)
	}
	if logger.WarnCount() != 1 {
		t.Errorf("expected one warning for the failed count, got %d", logger.WarnCount())
	}
}

func TestSeed_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := benchmark.Seed(context.Background(), newStore(t), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestParseEntity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		brand   string
		aliases []string
		ok      bool
	}{
		{
			raw:     "Hoshine Silicon Industry Co., Ltd. (also known as Hesheng Silicon Industry; and Hoshine Silicon)",
			brand:   "Hoshine Silicon Industry Co., Ltd",
			aliases: []string{"Hesheng Silicon Industry", "Hoshine Silicon"},
			ok:      true,
		},
		{
			raw:     "Camel  Group Co., Ltd. (formerly known as Camel Battery)",
			brand:   "Camel Group Co., Ltd",
			aliases: []string{"Camel Battery"},
			ok:      true,
		},
		{raw: "Ninestar Corporation", brand: "Ninestar Corporation", ok: true},
		{raw: "Xinjiang Zhongtai Chemical Co., Ltd.", brand: "Xinjiang Zhongtai Chemical Co., Ltd", ok: true},
		{raw: "abc", ok: false},
		{raw: "This update also adds the following", ok: false},
		{raw: "Entities identified below are subject", ok: false},
		{raw: "Acme Apparel", ok: false},
	}
	for _, tt := range tests {
		brand, aliases, ok := benchmark.ParseEntity(tt.raw)
		if ok != tt.ok || brand != tt.brand {
			t.Errorf("ParseEntity(%q) = %q, %v; want %q, %v", tt.raw, brand, ok, tt.brand, tt.ok)
		}
		if diff := cmp.Diff(tt.aliases, aliases); diff != "" {
			t.Errorf("ParseEntity(%q) aliases (-want +got):\n%s", tt.raw, diff)
		}
	}
}
