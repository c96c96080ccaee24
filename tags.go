package blogfront

import "log/slog"

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

func (c *Category) LogValue() slog.Value {
	if c == nil {
		return slog.Value{}
	}
	return slog.GroupValue(slog.String("id", c.ID), slog.String("name", c.Name))
}

type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

func (t *Tag) LogValue() slog.Value {
	if t == nil {
		return slog.Value{}
	}
	return slog.GroupValue(slog.String("id", t.ID), slog.String("name", t.Name))
}

// UniqueTags drops repeated tags (by ID), keeping the first occurrence
func UniqueTags(tags []*Tag) []*Tag {
	seen := make(map[string]struct{}, len(tags))
	out := make([]*Tag, 0, len(tags))
	for _, tag := range tags {
		if tag == nil {
			continue
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// UniqueIDs is the string counterpart of UniqueTags, used for form inputs
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
