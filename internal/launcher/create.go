package launcher

import (
	"strings"

	"taskdeck/internal/nlp"
)

// CreateFeed builds the create-focused feed: a single row previewing what
// the parsed input would create.
func (a *App) CreateFeed(query string) Feed {
	if strings.TrimSpace(query) == "" {
		return Feed{Items: []Item{{
			Title:    "Create task",
			Subtitle: "Type a title (use \"//\" for details)",
			Valid:    false,
		}}}
	}
	return Feed{Items: []Item{a.buildCreateItem(query)}}
}

// buildCreateItem renders the create row with its parsed preview and the
// verbatim bypass variant.
func (a *App) buildCreateItem(query string) Item {
	draft := nlp.Parse(query, a.now())
	hasTitle := draft.Title != ""

	title := "Create task (add a title)"
	subtitle := "Type a title, then press Enter"
	if hasTitle {
		title = "Create: \"" + draft.Title + "\""
		subtitle = "Enter to create"
	}
	subtitle += " • " + nlp.Preview(draft)

	meta := &CreateMeta{
		Scheduled: draft.Scheduled,
		Due:       draft.Due,
		Priority:  draft.Priority,
		Tags:      draft.Tags,
		Projects:  draft.Projects,
		Details:   draft.Details,
	}

	item := Item{
		Title:    title,
		Subtitle: subtitle,
		Valid:    hasTitle,
	}
	if hasTitle {
		item.Arg = argJSON(ActionRequest{
			Action: "create",
			Text:   draft.Title,
			Raw:    draft.Raw,
			Meta:   meta,
		})
	}
	item.Mods = map[string]Mod{
		"cmd": {
			Subtitle: "Create + open" + previewSuffix(hasTitle, draft),
			Arg: argJSON(ActionRequest{
				Action: "create",
				Text:   draft.Title,
				Raw:    draft.Raw,
				Meta:   meta,
				Open:   true,
			}),
			Valid: hasTitle,
		},
		"shift": {
			Subtitle: "Create verbatim (skip parsing)",
			Arg:      argJSON(ActionRequest{Action: "create", Text: draft.Raw, Verbatim: true}),
			Valid:    draft.Raw != "",
		},
		"cmd+shift": {
			Subtitle: "Create verbatim + open",
			Arg:      argJSON(ActionRequest{Action: "create", Text: draft.Raw, Verbatim: true, Open: true}),
			Valid:    draft.Raw != "",
		},
	}
	return item
}

func previewSuffix(hasTitle bool, draft nlp.Draft) string {
	if !hasTitle {
		return ""
	}
	return " • " + nlp.Preview(draft)
}
