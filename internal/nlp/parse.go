package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Draft is the structured result of parsing one quick-add string. Dates are
// ISO YYYY-MM-DD; Priority is the canonical High/Medium/Low label expected by
// the TaskNotes API.
type Draft struct {
	Raw       string
	Title     string
	Details   string // details segment with normalized real newlines
	Scheduled string
	Due       string
	Priority  string
	Tags      []string
	Projects  []string
	Warnings  []string
}

// DetailLines splits the details segment into trimmed, non-empty lines.
func (d Draft) DetailLines() []string {
	if d.Details == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(d.Details, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var priorityMarkers = map[string]string{
	"p1": "High", "p2": "Medium", "p3": "Low",
	"!!!": "High", "!!": "Medium", "!": "Low",
}

var (
	reLiteralNewline = regexp.MustCompile(` *\\n *`)
	reMultiSpace     = regexp.MustCompile(` {2,}`)
	reTrailingPunct  = regexp.MustCompile(`[.,;:]+$`)
)

// Parse converts a raw quick-add string into a Draft relative to the given
// reference day. It never fails: metadata it cannot recognize remains part of
// the title, and an input that is all metadata yields an empty title —
// rejecting that is the creation path's job, not the parser's.
func Parse(raw string, today time.Time) Draft {
	raw = strings.TrimSpace(raw)
	today = dayOf(today)
	if raw == "" {
		return Draft{}
	}

	draft := Draft{Raw: raw}

	// Everything after the first "//" is the details segment; metadata
	// extraction only applies to the left side.
	left := raw
	if idx := strings.Index(raw, "//"); idx >= 0 {
		left = strings.TrimSpace(raw[:idx])
		details := strings.TrimSpace(raw[idx+2:])
		if details != "" {
			details = reLiteralNewline.ReplaceAllString(details, "\n")
			details = reMultiSpace.ReplaceAllString(details, "\n")
			draft.Details = details
		}
	}

	tokens := strings.Fields(left)
	var keep []string

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		low := strings.ToLower(cleanToken(tok))

		if p, ok := priorityMarkers[low]; ok {
			// First marker wins; later ones are consumed but ignored.
			if draft.Priority == "" {
				draft.Priority = p
			}
			i++
			continue
		}

		if strings.HasPrefix(tok, "#") && len(tok) > 1 {
			if tag := reTrailingPunct.ReplaceAllString(strings.TrimSpace(tok[1:]), ""); tag != "" {
				draft.Tags = appendUnique(draft.Tags, tag)
			}
			i++
			continue
		}

		if strings.HasPrefix(tok, "+") && len(tok) > 1 {
			name, next := scanProject(tokens, i, today)
			if name != "" {
				draft.Projects = appendUnique(draft.Projects, name)
			}
			i = next
			continue
		}

		// Contexts are intentionally not parsed; warn instead of silently
		// eating title text.
		if strings.HasPrefix(tok, "@") && len(tok) > 1 {
			draft.Warnings = append(draft.Warnings, "Ignored "+tok+" (contexts disabled)")
			i++
			continue
		}

		if rest, ok := strings.CutPrefix(low, "due:"); ok && rest != "" {
			if d, _ := parseDatePhrase([]string{tok[4:]}, 0, today, true); d != "" {
				draft.Due = d
				i++
				continue
			}
		}

		if low == "due" || low == "by" {
			if d, n := parseDatePhrase(tokens, i+1, today, true); d != "" {
				draft.Due = d
				i += 1 + n
				continue
			}
		}

		if rest, ok := strings.CutPrefix(low, "sch:"); ok && rest != "" {
			if d, _ := parseDatePhrase([]string{tok[4:]}, 0, today, true); d != "" {
				draft.Scheduled = d
				i++
				continue
			}
		}

		if low == "do" || low == "sch" || low == "on" || low == "start" || low == "scheduled" {
			if d, n := parseDatePhrase(tokens, i+1, today, true); d != "" {
				draft.Scheduled = d
				i += 1 + n
				continue
			}
		}

		// A bare date defaults to scheduled and rolls forward when yearless.
		if d, n := parseDatePhrase(tokens, i, today, false); n > 0 {
			draft.Scheduled = d
			i += n
			continue
		}

		keep = append(keep, tok)
		i++
	}

	draft.Title = strings.Join(keep, " ")
	return draft
}

// scanProject consumes a "+Project" token plus any following plain tokens up
// to the next recognized metadata or date token, supporting multi-word names
// like "+2025 Wardrobe Upgrade". Returns the project name and the index of
// the first unconsumed token.
func scanProject(tokens []string, i int, today time.Time) (string, int) {
	first := reTrailingPunct.ReplaceAllString(strings.TrimSpace(tokens[i][1:]), "")
	if first == "" {
		return "", i + 1
	}

	parts := []string{first}
	j := i + 1
	for j < len(tokens) {
		next := tokens[j]
		low := strings.ToLower(cleanToken(next))

		if strings.HasPrefix(next, "#") || strings.HasPrefix(next, "+") || strings.HasPrefix(next, "@") {
			break
		}
		if low == "due" || low == "by" || low == "do" || low == "sch" {
			break
		}
		if _, ok := priorityMarkers[low]; ok {
			break
		}
		if strings.HasPrefix(low, "due:") || strings.HasPrefix(low, "sch:") {
			break
		}
		if _, n := parseDatePhrase(tokens, j, today, true); n > 0 {
			break
		}

		if part := reTrailingPunct.ReplaceAllString(strings.TrimSpace(next), ""); part != "" {
			parts = append(parts, part)
		}
		j++
	}

	return strings.TrimSpace(strings.Join(parts, " ")), j
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

// Preview renders a one-line human summary of the parsed metadata for
// display under the create item.
func Preview(d Draft) string {
	var pieces []string
	if d.Scheduled != "" {
		pieces = append(pieces, "Scheduled: "+d.Scheduled)
	}
	if d.Due != "" {
		pieces = append(pieces, "Due: "+d.Due)
	}
	if d.Priority != "" {
		pieces = append(pieces, "Priority: "+d.Priority)
	}
	if lines := d.DetailLines(); len(lines) > 0 {
		label := "lines"
		if len(lines) == 1 {
			label = "line"
		}
		pieces = append(pieces, "Details: "+strconv.Itoa(len(lines))+" "+label)
	}
	if len(d.Tags) > 0 {
		pieces = append(pieces, "Tags: "+truncatedJoin(d.Tags, 5))
	}
	if len(d.Projects) > 0 {
		pieces = append(pieces, "Projects: "+truncatedJoin(d.Projects, 3))
	}

	preview := "No metadata detected"
	if len(pieces) > 0 {
		preview = strings.Join(pieces, " • ")
	}
	if len(d.Warnings) > 0 {
		shown := d.Warnings
		if len(shown) > 2 {
			shown = shown[:2]
		}
		preview += "  ⚠ " + strings.Join(shown, " · ")
		if len(d.Warnings) > 2 {
			preview += "…"
		}
	}
	return preview
}

func truncatedJoin(values []string, limit int) string {
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	return strings.Join(values[:limit], ", ") + "…"
}
