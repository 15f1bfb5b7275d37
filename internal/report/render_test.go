package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/siteassess/internal/api"
)

var utcOpts = Options{DateLayout: "2006-01-02", Location: time.UTC}

func TestScoreClassBoundaries(t *testing.T) {
	t.Parallel()

	cases := map[float64]Band{
		100:   Excellent,
		80:    Excellent,
		79.99: Good,
		60:    Good,
		59.99: Moderate,
		40:    Moderate,
		39.99: Poor,
		0:     Poor,
	}
	for in, want := range cases {
		require.Equal(t, want, ScoreClass(in), "score %v", in)
	}
	require.NotEqual(t, Moderate, ScoreClass(79.9))
}

func TestScoreClassMonotonic(t *testing.T) {
	t.Parallel()

	rank := map[Band]int{Poor: 0, Moderate: 1, Good: 2, Excellent: 3}
	prev := -1
	for s := 0.0; s <= 100.0; s += 0.01 {
		r, ok := rank[ScoreClass(s)]
		require.True(t, ok)
		require.GreaterOrEqual(t, r, prev, "score %v", s)
		prev = r
	}
}

func TestRenderDisaster(t *testing.T) {
	t.Parallel()

	d := RenderDisaster(api.DisasterReport{
		DeadLoad:              1234.5,
		TotalLoad:             2000,
		FoundationDepth:       2.5,
		EarthquakeSafetyScore: 72.44,
		BaseShear:             88.123,
		SoftStoryDetected:     true,
		VortexSheddingRisk:    "High",
		HeightToWidthRatio:    3.14159,
		CreatedAt:             "2026-03-04T10:20:30.000Z",
	}, utcOpts)

	require.Equal(t, KindDisaster, d.Kind)
	require.Equal(t, "2026-03-04", d.Date)
	require.Equal(t, "2026-03-04T10:20:30.000Z", d.RawTimestamp)

	loads, ok := d.Section(SectionLoads)
	require.True(t, ok)
	require.Equal(t, "1234.50 kN", loads.Stats[0].Value)
	require.Equal(t, "2000.00 kN", loads.Stats[4].Value)

	eq, ok := d.Section(SectionEarthquake)
	require.True(t, ok)
	require.Equal(t, "72.4", eq.Score.Value)
	require.Equal(t, Good, eq.Score.Band)
	require.Equal(t, "88.12 kN", eq.Items[0].Value)
	require.Equal(t, ToneDanger, eq.Items[1].Tone)

	st, _ := d.Section(SectionStructural)
	require.Equal(t, "2.5m", st.Items[2].Value)

	wind, _ := d.Section(SectionWind)
	require.Equal(t, "high", wind.Items[0].Badge)
	require.Equal(t, "3.14", wind.Items[1].Value)
}

func vastuWith(violations []api.VastuViolation, corrections []api.VastuCorrection) api.VastuReport {
	return api.VastuReport{
		VastuComplianceScore:  55,
		OverallCompliance:     "Partial",
		KitchenZoneCompliance: true,
		Violations:            violations,
		Corrections:           corrections,
		CreatedAt:             "2026-03-04T00:00:00Z",
	}
}

func TestVastuEmptyViolationsOmitted(t *testing.T) {
	t.Parallel()

	for _, v := range [][]api.VastuViolation{nil, {}} {
		d := RenderVastu(vastuWith(v, nil), utcOpts)
		_, ok := d.Section(SectionViolations)
		require.False(t, ok)
		_, ok = d.Section(SectionCorrections)
		require.False(t, ok)
		require.NotContains(t, Text(d), SectionViolations)
	}
}

func TestVastuSingleViolation(t *testing.T) {
	t.Parallel()

	d := RenderVastu(vastuWith([]api.VastuViolation{{
		Category:    "Entrance",
		Description: "South-west entrance",
		Impact:      "Financial instability",
		Severity:    "High",
	}}, []api.VastuCorrection{{Violation: "Entrance", Solution: "Add pyramid", Priority: "Medium"}}), utcOpts)

	sec, ok := d.Section(SectionViolations)
	require.True(t, ok)
	require.Len(t, sec.Alerts, 1)
	a := sec.Alerts[0]
	require.Equal(t, Alert{Category: "Entrance", Description: "South-west entrance", Impact: "Financial instability", Level: "high"}, a)

	text := Text(d)
	ci := strings.Index(text, "Entrance: South-west entrance")
	ii := strings.Index(text, "Impact: Financial instability")
	require.GreaterOrEqual(t, ci, 0)
	require.Greater(t, ii, ci)

	fix, ok := d.Section(SectionCorrections)
	require.True(t, ok)
	require.Equal(t, "Medium", fix.Corrections[0].Priority)

	comp, _ := d.Section(SectionCompliance)
	require.Equal(t, Moderate, comp.Score.Band)
	require.Equal(t, "partial", comp.Items[0].Badge)
	dir, _ := d.Section(SectionDirectional)
	require.Equal(t, "✓ Compliant", dir.Items[2].Value)
	require.Equal(t, "✗ Non-compliant", dir.Items[3].Value)
}

func TestRenderFinal(t *testing.T) {
	t.Parallel()

	d := RenderFinal(api.FinalReport{
		OverallSafetyScore:  81,
		CostEfficiencyScore: 61.25,
		SustainabilityScore: 40,
		VastuScore:          12,
		ReportStatus:        "completed",
		SurveySummary:       api.SurveySummary{Location: api.Location{Lat: 12.97, Lng: 77.59}, PlotArea: 500},
		RiskAnalysis: api.RiskAnalysis{
			EarthquakeRisk: api.EarthquakeRisk{Zone: "III", SafetyScore: 72},
			FloodRisk:      api.FloodRisk{BasementFeasible: false},
		},
		FinalRecommendations: api.Recommendations{
			Structural: []string{"Use M25 concrete"},
			General:    []string{"Hire an engineer"},
		},
		GeneratedAt: "2026-05-06T08:00:00Z",
	}, utcOpts)

	require.Equal(t, "completed", d.Badge)
	require.Equal(t, "2026-05-06", d.Date)

	comp, _ := d.Section(SectionComposite)
	bands := []Band{}
	for _, s := range comp.Stats {
		bands = append(bands, s.Band)
	}
	require.Equal(t, []Band{Excellent, Good, Moderate, Poor}, bands)
	require.Equal(t, "61.3", comp.Stats[1].Value)

	survey, _ := d.Section(SectionSurvey)
	require.Equal(t, "12.97, 77.59", survey.Items[0].Value)
	require.Equal(t, "500 sq.m", survey.Items[1].Value)

	risk, _ := d.Section(SectionRisk)
	require.Equal(t, "Not Feasible", risk.Cards[1].Items[2].Value)
	quake := risk.Cards[0].Items[1]
	require.Equal(t, "72", quake.Value)
	require.Equal(t, string(Good), quake.Badge)

	recs, ok := d.Section(SectionRecommendations)
	require.True(t, ok)
	require.Len(t, recs.Lists, 2)
	require.Equal(t, "Structural", recs.Lists[0].Title)
	require.Equal(t, "General", recs.Lists[1].Title)
}

func TestFinalWithoutRecommendations(t *testing.T) {
	t.Parallel()

	d := RenderFinal(api.FinalReport{}, utcOpts)
	_, ok := d.Section(SectionRecommendations)
	require.False(t, ok)
	require.Empty(t, d.Date)
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2026-01-02", FormatDate("2026-01-02T03:04:05Z", utcOpts))
	require.Equal(t, "2026-01-02", FormatDate("2026-01-02", utcOpts))
	require.Equal(t, "not a date", FormatDate("not a date", utcOpts))
	require.Equal(t, "", FormatDate("  ", utcOpts))
	require.Equal(t, "1/2/2026", FormatDate("2026-01-02T12:00:00Z", Options{Location: time.UTC}))
}

func TestRenderDispatch(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(api.VastuReport{VastuComplianceScore: 90})
	require.NoError(t, err)
	d, err := Render(KindVastu, raw, utcOpts)
	require.NoError(t, err)
	require.Equal(t, KindVastu, d.Kind)

	_, err = Render(KindFinal, json.RawMessage(`[1]`), utcOpts)
	require.Error(t, err)
	_, err = Render(Kind("other"), raw, utcOpts)
	require.Error(t, err)
}
