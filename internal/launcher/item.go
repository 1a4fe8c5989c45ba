package launcher

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Item is one row in a script-filter feed.
type Item struct {
	Title        string         `json:"title"`
	Subtitle     string         `json:"subtitle,omitempty"`
	Arg          string         `json:"arg,omitempty"`
	Valid        bool           `json:"valid"`
	Autocomplete string         `json:"autocomplete,omitempty"`
	Match        string         `json:"match,omitempty"`
	Mods         map[string]Mod `json:"mods,omitempty"`
}

// Mod is a modifier-key variant of an item.
type Mod struct {
	Subtitle string `json:"subtitle"`
	Arg      string `json:"arg,omitempty"`
	Valid    bool   `json:"valid"`
}

// Feed is a complete script-filter response.
type Feed struct {
	Items []Item
	// Rerun asks the launcher to re-invoke the feed after this delay.
	// Zero disables the rerun.
	Rerun time.Duration
}

const (
	rerunMin = 100 * time.Millisecond
	rerunMax = 5 * time.Second
)

type feedJSON struct {
	Items []Item   `json:"items"`
	Rerun *float64 `json:"rerun,omitempty"`
}

// MarshalJSON renders the feed with the rerun hint clamped to the range the
// launcher accepts (0.1..5.0 seconds).
func (f Feed) MarshalJSON() ([]byte, error) {
	out := feedJSON{Items: f.Items}
	if out.Items == nil {
		out.Items = []Item{}
	}
	if f.Rerun > 0 {
		d := f.Rerun
		if d < rerunMin {
			d = rerunMin
		}
		if d > rerunMax {
			d = rerunMax
		}
		secs := d.Seconds()
		out.Rerun = &secs
	}
	return json.Marshal(out)
}

// Write emits the feed as a single JSON document.
func (f Feed) Write(w io.Writer) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}

// argJSON encodes an action payload for an item arg, falling back to an
// empty string on encoding failure so the feed still renders.
func argJSON(req ActionRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(data)
}
