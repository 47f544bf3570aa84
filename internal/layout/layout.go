// ABOUTME: Widget layout defaults and merge of newly introduced widgets
// ABOUTME: Stored order and sizes always win over the shipped defaults

// Package layout manages the dashboard's widget arrangement. The stored
// layout is authoritative; defaults only contribute widgets the stored
// layout has never seen, appended at the end.
package layout

// Widget sizes.
const (
	SizeFull  = "full"
	SizeHalf  = "half"
	SizeThird = "third"
)

// Widget is one dashboard tile.
type Widget struct {
	ID        string `json:"id"`
	Size      string `json:"size"`
	Collapsed bool   `json:"collapsed"`
}

// Default returns the shipped widget arrangement used on first mount.
func Default() []Widget {
	return []Widget{
		{ID: "weather", Size: SizeHalf},
		{ID: "deadlines", Size: SizeHalf},
		{ID: "news", Size: SizeFull},
		{ID: "workout", Size: SizeThird},
		{ID: "walk", Size: SizeThird},
		{ID: "breathwork", Size: SizeThird},
		{ID: "saves", Size: SizeFull},
		{ID: "notes", Size: SizeFull},
	}
}

// Merge reconciles a stored layout with the current defaults: stored
// widgets keep their order, size, and collapsed state; defaults whose
// IDs are absent from the stored layout are appended in default order.
// Unknown sizes normalize to full.
func Merge(stored, defaults []Widget) []Widget {
	seen := make(map[string]bool, len(stored))
	merged := make([]Widget, 0, len(stored)+len(defaults))

	for _, w := range stored {
		if w.ID == "" || seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		merged = append(merged, normalize(w))
	}

	for _, w := range defaults {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		merged = append(merged, normalize(w))
	}

	return merged
}

func normalize(w Widget) Widget {
	switch w.Size {
	case SizeFull, SizeHalf, SizeThird:
	default:
		w.Size = SizeFull
	}
	return w
}
