package assessor_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/page"
)

func TestScanText_ForcedLaborAlone(t *testing.T) {
	t.Parallel()
	k := assessor.NewKeywordScanner(nil, nil)

	got := k.ScanText("forced labor")
	if got.RiskLevel != assessor.RiskHigh {
		t.Errorf("tier = %q, want high", got.RiskLevel)
	}
	if len(got.Matches) != 1 || got.Matches[0].Term != "forced labor" {
		t.Fatalf("matches = %+v, want exactly one 'forced labor'", got.Matches)
	}
	if got.Matches[0].Level != assessor.RiskHigh || got.Matches[0].Weight != 3 {
		t.Errorf("unexpected match %+v", got.Matches[0])
	}
	if got.Source != assessor.SourceKeyword || got.Disclaimer == "" {
		t.Errorf("unexpected source/disclaimer: %+v", got)
	}
}

func TestScanText_SupplyChainOnce(t *testing.T) {
	t.Parallel()
	got := assessor.NewKeywordScanner(nil, nil).ScanText("Learn about our Supply   Chain")

	if got.RiskLevel != assessor.RiskModerate {
		t.Errorf("tier = %q, want moderate", got.RiskLevel)
	}
	if got.Score != 1 {
		t.Errorf("score = %d, want 1", got.Score)
	}
}

func TestScanText_IrrelevantText(t *testing.T) {
	t.Parallel()
	k := assessor.NewKeywordScanner(nil, nil)

	for _, text := range []string{"", "   ", "Add to bag. Free shipping on orders over $50."} {
		got := k.ScanText(text)
		if got.RiskLevel != assessor.RiskLow || len(got.Matches) != 0 || got.Score != 0 {
			t.Errorf("ScanText(%q) = %+v, want low with no matches", text, got)
		}
	}
}

func TestScanText_Monotonic(t *testing.T) {
	t.Parallel()
	k := assessor.NewKeywordScanner(nil, nil)

	var terms []string
	for _, tt := range assessor.ModerateRiskTerms {
		terms = append(terms, tt.Term)
	}
	for _, tt := range assessor.HighRiskTerms {
		terms = append(terms, tt.Term)
	}

	text := "welcome to checkout"
	prev := k.ScanText(text)
	for _, term := range terms {
		text += " " + term
		cur := k.ScanText(text)
		if cur.RiskLevel.Rank() < prev.RiskLevel.Rank() {
			t.Fatalf("tier dropped from %q to %q after adding %q", prev.RiskLevel, cur.RiskLevel, term)
		}
		if cur.Score < prev.Score {
			t.Fatalf("score dropped from %d to %d after adding %q", prev.Score, cur.Score, term)
		}
		prev = cur
	}
	if prev.RiskLevel != assessor.RiskHigh {
		t.Errorf("final tier = %q, want high", prev.RiskLevel)
	}
}

func TestTermTablesHaveNoOverlaps(t *testing.T) {
	t.Parallel()
	all := append(append([]assessor.Term(nil), assessor.HighRiskTerms...), assessor.ModerateRiskTerms...)
	for i, a := range all {
		for j, b := range all {
			if i != j && strings.Contains(a.Term, b.Term) {
				t.Errorf("term %q contains term %q", a.Term, b.Term)
			}
		}
	}
}

func TestScan_ReadsPageSources(t *testing.T) {
	t.Parallel()

	pc, err := page.Parse("https://shop.example.com/checkout", []byte(`<html><head>
		<title>Checkout</title>
		<meta name="description" content="Organic cotton basics">
		<script>var x = "xinjiang";</script>
	</head><body>
		<h1>Review order</h1>
		<p>We audit our supply chain every year.</p>
		<style>.uyghur{}</style>
	</body></html>`))
	if err != nil {
		t.Fatal(err)
	}

	got := assessor.NewKeywordScanner(nil, nil).Scan(pc)
	want := []assessor.KeywordMatch{
		{Term: "supply chain", Weight: 1, Reason: assessor.ModerateRiskTerms[0].Reason, Level: assessor.RiskModerate},
		{Term: "cotton", Weight: 1, Reason: assessor.ModerateRiskTerms[2].Reason, Level: assessor.RiskModerate},
	}
	if diff := cmp.Diff(want, got.Matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
	if got.RiskLevel != assessor.RiskModerate || got.Score != 2 {
		t.Errorf("got tier %q score %d, want moderate 2", got.RiskLevel, got.Score)
	}
}

func TestScan_NoDOM(t *testing.T) {
	t.Parallel()
	got := assessor.NewKeywordScanner(nil, nil).Scan(page.Empty("https://example.com/checkout"))
	if got.RiskLevel != assessor.RiskLow {
		t.Errorf("tier = %q, want low", got.RiskLevel)
	}
}

func TestParseRiskLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]assessor.RiskLevel{"HIGH": assessor.RiskHigh, " moderate ": assessor.RiskModerate, "low": assessor.RiskLow, "unknown": assessor.RiskUnknown} {
		if got, ok := assessor.ParseRiskLevel(in); !ok || got != want {
			t.Errorf("ParseRiskLevel(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := assessor.ParseRiskLevel("severe"); ok {
		t.Error("expected severe to be rejected")
	}
}
