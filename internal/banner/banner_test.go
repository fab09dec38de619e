package banner_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/testutil"
)

var ignoreID = cmpopts.IgnoreFields(banner.Banner{}, "ID")

func TestBuild_KTC(t *testing.T) {
	t.Parallel()

	a := assessor.RiskAssessment{
		Source:        assessor.SourceKTC,
		RiskLevel:     assessor.RiskHigh,
		Reason:        "Scored 12/100",
		Disclaimer:    assessor.KTCDisclaimer,
		Brand:         "Acme",
		KTCScore:      12,
		KTCRank:       40,
		BenchmarkYear: 2023,
		Themes:        &assessor.Themes{CommitmentGovernance: 30, Recruitment: 140, Remedy: -2},
		SourceURL:     "https://knowthechain.org",
	}
	got := banner.Build(a)
	want := banner.Banner{
		Source:      assessor.SourceKTC,
		Title:       "Supply chain benchmark",
		Dismissible: true,
		Pill:        banner.Pill{Level: assessor.RiskHigh, Label: "High risk"},
		Brand:       "Acme",
		Reason:      "Scored 12/100",
		Disclaimer:  assessor.KTCDisclaimer,
		Benchmark: &banner.BenchmarkDetail{
			Score: 12, Rank: 40, Year: 2023, SourceURL: "https://knowthechain.org",
			Bars: []banner.Bar{
				{Label: "Commitment & Governance", Score: 30},
				{Label: "Traceability & Risk Assessment", Score: 0},
				{Label: "Purchasing Practices", Score: 0},
				{Label: "Recruitment", Score: 100},
				{Label: "Worker Voice", Score: 0},
				{Label: "Monitoring", Score: 0},
				{Label: "Remedy", Score: 0},
			},
		},
	}
	if diff := cmp.Diff(want, got, ignoreID); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
	if got.ID == "" {
		t.Error("expected an ID")
	}
}

func TestBuild_AI(t *testing.T) {
	t.Parallel()

	got := banner.Build(assessor.RiskAssessment{Source: assessor.SourceAI, RiskLevel: assessor.RiskModerate, Confidence: 0.72, HasConfidence: true})
	if got.AI == nil || got.AI.Line != "Confidence: 72%" {
		t.Fatalf("unexpected AI detail %+v", got.AI)
	}
	if got.Benchmark != nil || got.Keywords != nil {
		t.Error("only the AI detail should be set")
	}

	unknown := banner.Build(assessor.UnavailableAI("Acme"))
	if unknown.Pill.Label != "Unknown risk" || unknown.AI.Line != "Confidence: n/a" {
		t.Errorf("unexpected unknown banner %+v", unknown)
	}

	noConf := banner.Build(assessor.RiskAssessment{Source: assessor.SourceAI, RiskLevel: assessor.RiskHigh})
	if noConf.AI == nil || noConf.AI.Line != "Confidence: n/a" {
		t.Errorf("AI verdict without confidence: got %+v", noConf.AI)
	}
}

func TestBuild_KeywordsCappedAndOrdered(t *testing.T) {
	t.Parallel()

	m := func(term string, w int, l assessor.RiskLevel) assessor.KeywordMatch {
		return assessor.KeywordMatch{Term: term, Weight: w, Level: l}
	}
	a := assessor.RiskAssessment{
		Source:    assessor.SourceKeyword,
		RiskLevel: assessor.RiskHigh,
		Score:     12,
		Matches: []assessor.KeywordMatch{
			m("cotton", 1, assessor.RiskModerate),
			m("xinjiang", 3, assessor.RiskHigh),
			m("cocoa", 1, assessor.RiskModerate),
			m("uyghur", 3, assessor.RiskHigh),
			m("palm oil", 1, assessor.RiskModerate),
			m("seafood", 1, assessor.RiskModerate),
			m("supply chain", 2, assessor.RiskModerate),
		},
	}
	got := banner.Build(a)
	want := &banner.KeywordDetail{
		Score: 12,
		Total: 7,
		Matches: []assessor.KeywordMatch{
			m("xinjiang", 3, assessor.RiskHigh),
			m("uyghur", 3, assessor.RiskHigh),
			m("supply chain", 2, assessor.RiskModerate),
			m("cotton", 1, assessor.RiskModerate),
			m("cocoa", 1, assessor.RiskModerate),
		},
	}
	if diff := cmp.Diff(want, got.Keywords); diff != "" {
		t.Errorf("keyword detail mismatch (-want +got):\n%s", diff)
	}
	if len(a.Matches) != 7 || a.Matches[0].Term != "cotton" {
		t.Error("Build must not reorder the assessment's matches")
	}
}

func TestPresenter_ExactlyOneVisible(t *testing.T) {
	t.Parallel()

	surface := &testutil.DummySurface{}
	p := banner.NewPresenter(surface, nil)

	first, err := p.Show(assessor.RiskAssessment{Source: assessor.SourceKeyword, RiskLevel: assessor.RiskLow})
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Show(assessor.RiskAssessment{Source: assessor.SourceKeyword, RiskLevel: assessor.RiskHigh})
	if err != nil {
		t.Fatal(err)
	}

	visible := surface.Visible()
	if len(visible) != 1 || visible[0].ID != second.ID {
		t.Fatalf("visible = %+v, want only %s", visible, second.ID)
	}
	if diff := cmp.Diff([]string{first.ID}, surface.Unmounted); diff != "" {
		t.Errorf("unmounted mismatch (-want +got):\n%s", diff)
	}
	cur, ok := p.Current()
	if !ok || cur.ID != second.ID {
		t.Errorf("Current() = %v, %v", cur.ID, ok)
	}
}

func TestPresenter_DismissDoesNotBlockLaterBanners(t *testing.T) {
	t.Parallel()

	surface := &testutil.DummySurface{}
	p := banner.NewPresenter(surface, nil)

	b, _ := p.Show(assessor.RiskAssessment{Source: assessor.SourceKeyword, RiskLevel: assessor.RiskModerate})
	if err := p.Dismiss("someone-else"); !errors.Is(err, banner.ErrNotShown) {
		t.Errorf("Dismiss(other) err = %v, want ErrNotShown", err)
	}
	if err := p.Dismiss(b.ID); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if _, ok := p.Current(); ok {
		t.Error("expected nothing shown after dismiss")
	}
	if len(surface.Visible()) != 0 {
		t.Error("surface still shows a banner")
	}

	if _, err := p.Show(assessor.RiskAssessment{Source: assessor.SourceKeyword, RiskLevel: assessor.RiskHigh}); err != nil {
		t.Fatal(err)
	}
	if len(surface.Visible()) != 1 {
		t.Error("later assessment was not shown")
	}
}

func TestPresenter_ClearIsIdempotent(t *testing.T) {
	t.Parallel()

	surface := &testutil.DummySurface{}
	p := banner.NewPresenter(surface, nil)
	if err := p.Clear(); err != nil {
		t.Fatal(err)
	}
	_, _ = p.Show(assessor.RiskAssessment{Source: assessor.SourceKeyword})
	if err := p.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := p.Clear(); err != nil {
		t.Fatal(err)
	}
	if len(surface.Unmounted) != 1 {
		t.Errorf("unmounted %d times, want 1", len(surface.Unmounted))
	}
}

func TestPresenter_MountError(t *testing.T) {
	t.Parallel()

	p := banner.NewPresenter(&testutil.DummySurface{MountErr: errors.New("detached")}, nil)
	if _, err := p.Show(assessor.RiskAssessment{Source: assessor.SourceKeyword}); err == nil {
		t.Fatal("expected mount error")
	}
	if _, ok := p.Current(); ok {
		t.Error("failed mount must not become current")
	}
}

func TestTerminalSurface_Render(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := banner.NewPresenter(banner.NewTerminalSurface(&buf), nil)
	_, err := p.Show(assessor.RiskAssessment{
		Source:     assessor.SourceKeyword,
		RiskLevel:  assessor.RiskHigh,
		Reason:     "Page mentions high-risk terms: xinjiang.",
		Disclaimer: assessor.KeywordDisclaimer,
		Matches:    []assessor.KeywordMatch{{Term: "xinjiang", Weight: 3, Level: assessor.RiskHigh}},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Supply chain signals on this page", "High risk", "xinjiang"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered banner missing %q:\n%s", want, out)
		}
	}
}
