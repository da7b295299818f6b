package core

// Resolve maps a (section, slug) pair plus the fetched collection onto
// the essay variant to render. It is a pure function of its inputs and
// safe to call on every render.
//
// While the collection is still loading it reports Loading and no
// essay; the caller must render a loading state rather than a template.
// A persisted or dummy essay matching the slug wins verbatim. With no
// match and a known section, an ephemeral template essay is synthesized
// (id "template-" + slug, deterministic). With no section context the
// outcome is "not found", which is distinct from "needs template".
func Resolve(section, slug string, collection []Essay, loading bool, actor Actor) Resolution {
	if loading {
		return Resolution{Loading: true}
	}

	for i := range collection {
		if collection[i].Slug == slug {
			essay := collection[i]
			return Resolution{Essay: &essay, Kind: KindOf(essay.ID)}
		}
	}

	if section == "" {
		return Resolution{}
	}

	template := NewTemplateEssay(section, slug, actor)
	return Resolution{Essay: &template, Kind: KindTemplate}
}
