// Package report projects analysis payloads into display models.
//
// Everything here is a pure transformation: no network, no storage. The
// same ScoreClass banding is applied to every score field of every report.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/siteassess/internal/api"
)

// Kind names a report variant.
type Kind string

const (
	KindDisaster Kind = "disaster"
	KindVastu    Kind = "vastu"
	KindFinal    Kind = "final"
)

// Band is the qualitative class of a 0-100 score.
type Band string

const (
	Excellent Band = "excellent"
	Good      Band = "good"
	Moderate  Band = "moderate"
	Poor      Band = "poor"
)

// ScoreClass bands a score: >=80 excellent, >=60 good, >=40 moderate, else poor.
func ScoreClass(score float64) Band {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Moderate
	default:
		return Poor
	}
}

// Tone hints how an item value should be coloured.
type Tone string

const (
	ToneNone    Tone = ""
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
)

// Stat is a headline number.
type Stat struct {
	Label string
	Value string
	Band  Band // empty for unscored stats
}

// Item is a labelled value.
type Item struct {
	Label string
	Value string
	Badge string // lower-cased badge class, when the value is shown as a badge
	Tone  Tone
}

// Score is a banded score card.
type Score struct {
	Label string
	Value string
	Raw   float64
	Band  Band
}

// Note is a labelled block of free text.
type Note struct {
	Label string
	Text  string
}

// Alert is one rendered violation.
type Alert struct {
	Category    string
	Description string
	Impact      string
	Level       string
}

// Correction is one rendered remedy.
type Correction struct {
	Priority  string
	Violation string
	Solution  string
}

// Card groups items under a heading.
type Card struct {
	Title string
	Items []Item
}

// List is a titled bullet list.
type List struct {
	Title   string
	Entries []string
}

// Section is one block of a report.
type Section struct {
	Title       string
	Score       *Score
	Stats       []Stat
	Items       []Item
	Notes       []Note
	Alerts      []Alert
	Corrections []Correction
	Cards       []Card
	Lists       []List
}

// Display is the rendered report.
type Display struct {
	Kind  Kind
	Title string
	// Date is formatted for display; RawTimestamp is the payload value untouched.
	Date         string
	RawTimestamp string
	Badge        string
	Sections     []Section
}

// Section returns the section with the given title.
func (d Display) Section(title string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// Options control display formatting.
type Options struct {
	DateLayout string
	Location   *time.Location
}

// DefaultOptions formats dates as month/day/year in local time.
func DefaultOptions() Options {
	return Options{DateLayout: "1/2/2006", Location: time.Local}
}

func (o Options) normalized() Options {
	if o.DateLayout == "" {
		o.DateLayout = "1/2/2006"
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// FormatDate formats an ISO timestamp for display. Unparsable input is shown as is.
func FormatDate(raw string, opts Options) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	opts = opts.normalized()
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(opts.Location).Format(opts.DateLayout)
		}
	}
	return raw
}

// Render decodes raw into the payload type for kind and renders it.
func Render(kind Kind, raw json.RawMessage, opts Options) (Display, error) {
	switch kind {
	case KindDisaster:
		var r api.DisasterReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return Display{}, fmt.Errorf("decode disaster report: %w", err)
		}
		return RenderDisaster(r, opts), nil
	case KindVastu:
		var r api.VastuReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return Display{}, fmt.Errorf("decode vastu report: %w", err)
		}
		return RenderVastu(r, opts), nil
	case KindFinal:
		var r api.FinalReport
		if err := json.Unmarshal(raw, &r); err != nil {
			return Display{}, fmt.Errorf("decode final report: %w", err)
		}
		return RenderFinal(r, opts), nil
	default:
		return Display{}, fmt.Errorf("unknown report kind %q", kind)
	}
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func plain(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func score(label string, v float64) *Score {
	return &Score{Label: label, Value: fixed(v, 1), Raw: v, Band: ScoreClass(v)}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func badge(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
