package senate

import (
	"encoding/xml"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
)

// The floor activity XML narrates the day in prose; times have to be fished
// out with patterns. All of them tolerate flexible spacing, an optional
// colon in the clock, and optional dots in the meridiem ("p.m.", "pm").
var (
	reToOrder     = regexp.MustCompile(`(?i)to\s+order\s+at\s+(\d{1,2})(?:\s*:\s*(\d{1,2}))?\s*([ap])\.?\s*m\.?`)
	reToOrderAt   = regexp.MustCompile(`(?i)to\s+order\s+at\s+noon`)
	reClosingTime = regexp.MustCompile(`(?i)(?:recess|adjourn(?:ed|s)?)\s+at\s+(\d{1,2})(?:\s*:\s*(\d{1,2}))?\s*([ap])\.?\s*m\.?`)
	reClosingNoon = regexp.MustCompile(`(?i)(?:recess|adjourn(?:ed|s)?)\s+at\s+noon`)
	reAtTime      = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?:\s*:\s*(\d{1,2}))?\s*([ap])\.?\s*m\.?`)
	reAtNoon      = regexp.MustCompile(`(?i)\bat\s+noon`)
	reUntilTime   = regexp.MustCompile(`(?i)until\s+(\d{1,2})(?:\s*:\s*(\d{1,2}))?\s*([ap])\.?\s*m\.?`)
	reUntilNoon   = regexp.MustCompile(`(?i)until\s+noon`)
	reOnDate      = regexp.MustCompile(`(?i)\bon\s+(?:[a-z]+,\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),\s+(\d{4})`)
)

type floorDoc struct {
	Date      string    `xml:"date_iso_8601"`
	IntroText string    `xml:"intro_text"`
	Sections  []section `xml:"section"`
}

type section struct {
	Type    string `xml:"type,attr"`
	Content string `xml:"content"`
}

// ParseFloor turns one day's floor activity XML into events: the day's
// convening from the intro text, plus the recess or adjournment section with
// the announced next convening. Novel phrasing degrades to the partial event
// set the patterns could recover; it never fails the refresh.
func ParseFloor(data []byte, sourceURL string, logger *slog.Logger) []events.Event {
	if logger == nil {
		logger = slog.Default()
	}

	var doc floorDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		logger.Warn("unparseable floor XML, skipping", "url", sourceURL, "error", err)
		return nil
	}
	base, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(doc.Date), chamber.Eastern)
	if err != nil {
		logger.Warn("floor XML missing usable date_iso_8601, skipping", "url", sourceURL, "error", err)
		return nil
	}

	var out []events.Event

	if intro := strings.TrimSpace(doc.IntroText); intro != "" {
		if t, ok := matchClock(intro, reToOrder, reToOrderAt); ok {
			out = append(out, events.Event{
				Kind:        events.Convene,
				Timestamp:   onDay(base, t),
				Description: intro,
				Source:      events.SourceXML,
				SourceURL:   sourceURL,
			})
		} else {
			logger.Warn("no convening time in intro_text", "url", sourceURL)
		}
	}

	for _, sec := range doc.Sections {
		var kind events.Kind
		switch sec.Type {
		case "recess":
			kind = events.RecessTime
		case "adjournment":
			kind = events.Adjourn
		default:
			continue
		}
		out = append(out, parseClosing(sec.Content, kind, base, sourceURL, logger)...)
		break
	}
	return out
}

// parseClosing extracts the recess/adjournment instant and the announced
// next convening from a closing section's text.
func parseClosing(content string, kind events.Kind, base time.Time, sourceURL string, logger *slog.Logger) []events.Event {
	text := strings.TrimSpace(strings.ReplaceAll(content, "\n", " "))
	var out []events.Event

	// The section text can mention other instants before the closing one
	// ("agreed to at 2:15 p.m., the Senate stands in recess at 6:30 p.m."),
	// so the recess/adjourn phrase anchors the match; the bare "at" pattern
	// is only a fallback for novel phrasing.
	t, ok := matchClock(text, reClosingTime, reClosingNoon)
	if !ok {
		t, ok = matchClock(text, reAtTime, reAtNoon)
	}
	if ok {
		out = append(out, events.Event{
			Kind:        kind,
			Timestamp:   onDay(base, t),
			Description: text,
			Source:      events.SourceXML,
			SourceURL:   sourceURL,
		})
	} else {
		logger.Warn("no closing time in section text", "kind", kind.String(), "url", sourceURL)
	}

	// Everything from the first "until" describes the next convening.
	idx := strings.Index(strings.ToLower(text), "until")
	if idx < 0 {
		return out
	}
	tail := text[idx:]

	t, ok = matchClock(tail, reUntilTime, reUntilNoon)
	if !ok {
		logger.Warn("no next-convening time after 'until'", "url", sourceURL)
		return out
	}

	day := base
	switch {
	case strings.Contains(strings.ToLower(tail), "tomorrow"):
		day = base.AddDate(0, 0, 1)
	default:
		if m := reOnDate.FindStringSubmatch(tail); m != nil {
			month := monthByName(m[1])
			dom, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			day = time.Date(year, month, dom, 0, 0, 0, 0, chamber.Eastern)
		}
	}

	out = append(out, events.Event{
		Kind:        events.ConveneScheduled,
		Timestamp:   onDay(day, t),
		Description: text,
		Source:      events.SourceXML,
		SourceURL:   sourceURL,
	})
	return out
}

// clockTime is a parser-internal scratch value; it only exists until it is
// combined with a civil date.
type clockTime struct {
	hour, minute int
}

// matchClock runs the clock pattern over text, falling back to the package's
// "noon" pattern for days announced without an explicit time.
func matchClock(text string, re, noon *regexp.Regexp) (clockTime, bool) {
	if m := re.FindStringSubmatch(text); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour < 1 || hour > 12 {
			return clockTime{}, false
		}
		minute := 0
		if m[2] != "" {
			minute, err = strconv.Atoi(m[2])
			if err != nil || minute > 59 {
				return clockTime{}, false
			}
		}
		if strings.EqualFold(m[3], "p") {
			if hour != 12 {
				hour += 12
			}
		} else if hour == 12 {
			hour = 0
		}
		return clockTime{hour: hour, minute: minute}, true
	}
	if noon != nil && noon.MatchString(text) {
		return clockTime{hour: 12}, true
	}
	return clockTime{}, false
}

func onDay(day time.Time, t clockTime) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.hour, t.minute, 0, 0, chamber.Eastern)
}

var englishMonths = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

func monthByName(name string) time.Month {
	if m, ok := englishMonths[strings.ToLower(name)]; ok {
		return m
	}
	return time.January
}
