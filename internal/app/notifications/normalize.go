package notifications

import "strings"

func NormalizeEvent(ev *IncomingEvent) {
	if ev == nil {
		return
	}
	ev.RecipientID = withTrimCollapse(ev.RecipientID)
	ev.SenderID = withTrimCollapse(ev.SenderID)
	ev.Kind = strings.ToLower(withTrimCollapse(ev.Kind))
	ev.Content = strings.TrimSpace(ev.Content)
}

func NormalizeListFilters(f *ListFilters) {
	if f == nil {
		return
	}
	f.RecipientID = withTrimCollapse(f.RecipientID)
	f.Kind = normPtr(f.Kind, func(s string) string {
		return strings.ToLower(withTrimCollapse(s))
	})
}

func normPtr(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	s := fn(*p)
	if s == "" {
		return nil
	}
	return &s
}

// withTrimCollapse: трим + схлопывание внутренних пробелов до одного.
func withTrimCollapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
