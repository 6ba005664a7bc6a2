package service

import (
	"sort"

	"eventsite/internal/domains"
	"eventsite/internal/render"
)

// pageData is the {{var}} context for a page: the hero's scalar values plus
// the site title, slug and event date.
func pageData(title, slug string, settings *domains.MicrositeSettings, sections []render.PageSection) map[string]any {
	data := map[string]any{}
	for _, sec := range sections {
		if sec.Type != domains.SectionHero {
			continue
		}
		for k, v := range sec.Values {
			switch v.(type) {
			case string, float64, int, int64, bool:
				data[k] = v
			}
		}
		break
	}
	data["siteTitle"] = title
	data["slug"] = slug
	if _, ok := data["title"]; !ok {
		data["title"] = title
	}
	if settings != nil && settings.EventDate != nil {
		if _, ok := data["eventDate"]; !ok {
			data["eventDate"] = settings.EventDate.Format("January 2, 2006")
		}
	}
	return data
}

func micrositePageSections(sections []domains.MicrositeSection, tmpl []domains.TemplateSection) []render.PageSection {
	fields := fieldsBySection(tmpl)
	out := make([]render.PageSection, 0, len(sections))
	for _, sec := range sections {
		out = append(out, render.PageSection{
			ID:      sec.SectionID,
			Type:    sec.Type,
			Name:    sec.Name,
			Values:  sec.Values,
			Fields:  fields[sec.SectionID],
			Enabled: sec.Enabled,
			Order:   sec.Order,
		})
	}
	return out
}

func sitePageSections(sections []domains.SiteSection, tmpl []domains.TemplateSection) []render.PageSection {
	fields := fieldsBySection(tmpl)
	out := make([]render.PageSection, 0, len(sections))
	for _, sec := range sections {
		out = append(out, render.PageSection{
			ID:      sec.ID,
			Type:    sec.Type,
			Name:    sec.Name,
			Values:  sec.Values,
			Fields:  fields[sec.ID],
			Enabled: sec.Enabled,
			Order:   sec.Order,
		})
	}
	return out
}

func fieldsBySection(tmpl []domains.TemplateSection) map[string][]domains.FieldDefinition {
	m := make(map[string][]domains.FieldDefinition, len(tmpl))
	for _, sec := range tmpl {
		m[sec.SectionID] = sec.Fields
	}
	return m
}

// publicSections keeps enabled sections sorted by order.
func publicSections(sections []render.PageSection) []domains.PublicSection {
	out := make([]domains.PublicSection, 0, len(sections))
	for _, sec := range sections {
		if !sec.Enabled {
			continue
		}
		out = append(out, domains.PublicSection{
			ID:     sec.ID,
			Type:   sec.Type,
			Name:   sec.Name,
			Values: sec.Values,
			Order:  sec.Order,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
