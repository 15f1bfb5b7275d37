package report

import (
	"github.com/jask/siteassess/internal/api"
)

// Section titles.
const (
	SectionLoads           = "Load Analysis"
	SectionStructural      = "Structural Recommendations"
	SectionEarthquake      = "Earthquake Analysis"
	SectionFlood           = "Flood Analysis"
	SectionWind            = "Wind/Cyclone Analysis"
	SectionCompliance      = "Vastu Compliance"
	SectionDirectional     = "Directional Analysis"
	SectionWater           = "Water Element Placement"
	SectionWindVastu       = "Wind-Vastu Compatibility"
	SectionViolations      = "Violations Detected"
	SectionCorrections     = "Recommended Corrections"
	SectionComposite       = "Composite Scores"
	SectionSurvey          = "Survey Summary"
	SectionRisk            = "Risk Analysis"
	SectionRecommendations = "Final Recommendations"
)

// RenderDisaster renders the disaster analysis report.
func RenderDisaster(r api.DisasterReport, opts Options) Display {
	softStory := Item{Label: "Soft Story Detected", Value: "No", Tone: ToneSuccess}
	if r.SoftStoryDetected {
		softStory = Item{Label: "Soft Story Detected", Value: "Yes - Critical!", Tone: ToneDanger}
	}
	loads := Section{
		Title: SectionLoads,
		Stats: []Stat{
			{Label: "Dead Load", Value: fixed(r.DeadLoad, 2) + " kN"},
			{Label: "Live Load", Value: fixed(r.LiveLoad, 2) + " kN"},
			{Label: "Wind Load", Value: fixed(r.WindLoad, 2) + " kN"},
			{Label: "Seismic Load", Value: fixed(r.SeismicLoad, 2) + " kN"},
			{Label: "Total Load", Value: fixed(r.TotalLoad, 2) + " kN"},
		},
	}
	return Display{
		Kind:         KindDisaster,
		Title:        "Disaster Analysis Report",
		Date:         FormatDate(r.CreatedAt, opts),
		RawTimestamp: r.CreatedAt,
		Sections: []Section{
			loads,
			{
				Title: SectionStructural,
				Items: []Item{
					{Label: "Height Category", Value: r.HeightCategory},
					{Label: "Foundation Type", Value: r.RecommendedFoundation},
					{Label: "Foundation Depth", Value: plain(r.FoundationDepth) + "m"},
					{Label: "Column Spacing", Value: plain(r.ColumnSpacing) + "m"},
					{Label: "Shear Walls Required", Value: yesNo(r.ShearWallRequired)},
				},
				Notes: []Note{{Label: "Beam Sizing", Text: r.BeamSizing}},
			},
			{
				Title: SectionEarthquake,
				Score: score("Safety Score", r.EarthquakeSafetyScore),
				Items: []Item{
					{Label: "Base Shear", Value: fixed(r.BaseShear, 2) + " kN"},
					softStory,
				},
			},
			{
				Title: SectionFlood,
				Items: []Item{
					{Label: "Minimum Plinth Height", Value: plain(r.MinimumPlinthHeight) + "m"},
					{Label: "Drainage Slope", Value: plain(r.DrainageSlope) + "%"},
					{Label: "Basement Feasible", Value: yesNo(r.BasementFeasible)},
				},
			},
			{
				Title: SectionWind,
				Items: []Item{
					{Label: "Vortex Shedding Risk", Value: r.VortexSheddingRisk, Badge: badge(r.VortexSheddingRisk)},
					{Label: "Height to Width Ratio", Value: fixed(r.HeightToWidthRatio, 2)},
				},
				Notes: []Note{{Label: "Shape Optimization", Text: r.ShapeOptimization}},
			},
		},
	}
}

func compliance(ok bool) string {
	if ok {
		return "✓ Compliant"
	}
	return "✗ Non-compliant"
}

// RenderVastu renders the Vastu report. Violations and corrections sections
// are present only when the payload has entries for them.
func RenderVastu(r api.VastuReport, opts Options) Display {
	sections := []Section{
		{
			Title: SectionCompliance,
			Score: score("Compliance Score", r.VastuComplianceScore),
			Items: []Item{{Label: "Overall Compliance", Value: r.OverallCompliance, Badge: badge(r.OverallCompliance)}},
		},
		{
			Title: SectionDirectional,
			Items: []Item{
				{Label: "Entrance Direction", Value: r.EntranceDirection},
				{Label: "Entrance Suitability", Value: r.EntranceSuitability},
				{Label: "Kitchen Zone", Value: compliance(r.KitchenZoneCompliance)},
				{Label: "Bedroom Zone", Value: compliance(r.BedroomZoneCompliance)},
				{Label: "Staircase", Value: compliance(r.StaircaseCompliance)},
			},
		},
		{
			Title: SectionWater,
			Notes: []Note{
				{Label: "Water Tank Direction", Text: r.WaterTankDirection},
				{Label: "Borewell Direction", Text: r.BorewellDirection},
			},
		},
		{
			Title: SectionWindVastu,
			Notes: []Note{{Text: r.WindVastuCompatibility}},
		},
	}

	if len(r.Violations) > 0 {
		alerts := make([]Alert, 0, len(r.Violations))
		for _, v := range r.Violations {
			alerts = append(alerts, Alert{
				Category:    v.Category,
				Description: v.Description,
				Impact:      v.Impact,
				Level:       badge(v.Severity),
			})
		}
		sections = append(sections, Section{Title: SectionViolations, Alerts: alerts})
	}
	if len(r.Corrections) > 0 {
		fixes := make([]Correction, 0, len(r.Corrections))
		for _, c := range r.Corrections {
			fixes = append(fixes, Correction{Priority: c.Priority, Violation: c.Violation, Solution: c.Solution})
		}
		sections = append(sections, Section{Title: SectionCorrections, Corrections: fixes})
	}

	return Display{
		Kind:         KindVastu,
		Title:        "Vastu Shastra Analysis Report",
		Date:         FormatDate(r.CreatedAt, opts),
		RawTimestamp: r.CreatedAt,
		Sections:     sections,
	}
}

// RenderFinal renders the composite report.
func RenderFinal(r api.FinalReport, opts Options) Display {
	scored := func(label string, v float64) Stat {
		return Stat{Label: label, Value: fixed(v, 1), Band: ScoreClass(v)}
	}
	s := r.SurveySummary
	risk := r.RiskAnalysis
	basement := "Not Feasible"
	if risk.FloodRisk.BasementFeasible {
		basement = "Feasible"
	}

	sections := []Section{
		{
			Title: SectionComposite,
			Stats: []Stat{
				scored("Safety Score", r.OverallSafetyScore),
				scored("Cost Efficiency", r.CostEfficiencyScore),
				scored("Sustainability", r.SustainabilityScore),
				scored("Vastu Score", r.VastuScore),
			},
		},
		{
			Title: SectionSurvey,
			Items: []Item{
				{Label: "Location", Value: plain(s.Location.Lat) + ", " + plain(s.Location.Lng)},
				{Label: "Plot Area", Value: plain(s.PlotArea) + " sq.m"},
				{Label: "Soil Type", Value: s.SoilType},
				{Label: "Seismic Zone", Value: s.SeismicZone},
				{Label: "Flood Risk", Value: s.FloodRisk},
			},
		},
		{
			Title: SectionRisk,
			Cards: []Card{
				{Title: "Earthquake Risk", Items: []Item{
					{Label: "Zone", Value: risk.EarthquakeRisk.Zone},
					{Label: "Safety Score", Value: plain(risk.EarthquakeRisk.SafetyScore), Badge: string(ScoreClass(risk.EarthquakeRisk.SafetyScore))},
					{Label: "Base Shear", Value: plain(risk.EarthquakeRisk.BaseShear) + " kN"},
				}},
				{Title: "Flood Risk", Items: []Item{
					{Label: "Level", Value: risk.FloodRisk.Level},
					{Label: "Plinth Height", Value: plain(risk.FloodRisk.PlinthHeight) + "m"},
					{Label: "Basement", Value: basement},
				}},
				{Title: "Wind Risk", Items: []Item{
					{Label: "Vortex Shedding", Value: risk.WindRisk.VortexShedding},
					{Label: "H/W Ratio", Value: plain(risk.WindRisk.HeightToWidthRatio)},
				}},
			},
		},
	}

	recs := r.FinalRecommendations
	var lists []List
	for _, l := range []List{
		{Title: "Structural", Entries: recs.Structural},
		{Title: "Disaster Mitigation", Entries: recs.Disaster},
		{Title: "Vastu", Entries: recs.Vastu},
		{Title: "General", Entries: recs.General},
	} {
		if len(l.Entries) > 0 {
			lists = append(lists, l)
		}
	}
	if len(lists) > 0 {
		sections = append(sections, Section{Title: SectionRecommendations, Lists: lists})
	}

	return Display{
		Kind:         KindFinal,
		Title:        "Comprehensive Analysis Report",
		Date:         FormatDate(r.GeneratedAt, opts),
		RawTimestamp: r.GeneratedAt,
		Badge:        r.ReportStatus,
		Sections:     sections,
	}
}
