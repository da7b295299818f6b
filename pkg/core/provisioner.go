package core

import (
	"context"
	"log/slog"
	"sync"
)

// Provisioner creates the backing record for a template essay exactly
// once. It reacts to resolver output: when a privileged, identified
// viewer lands on a slug with no persisted record, the template is
// replaced by a real essay created on the fly.
//
// One Provisioner is expected per page mount. It keeps a per
// (section, slug) guard so that re-observing the same resolution while
// the create call is still pending, or before the collection has
// refreshed, never issues a duplicate create.
type Provisioner struct {
	repo   Repository
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
	settled  map[string]bool
}

// NewProvisioner creates a Provisioner backed by the given repository.
func NewProvisioner(repo Repository, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		repo:     repo,
		logger:   logger,
		inFlight: make(map[string]bool),
		settled:  make(map[string]bool),
	}
}

// Observe inspects a resolution and, when all conditions hold, creates
// the persisted essay for it. It returns the created essay and true
// when a create happened. When the conditions do not hold, or a create
// for the same (section, slug) is pending or already settled, it is a
// no-op returning false.
//
// A failed create is logged and settled: the template stays in place
// for this mount and a fresh Provisioner (next navigation) retries.
func (p *Provisioner) Observe(ctx context.Context, res Resolution, actor Actor) (Essay, bool, error) {
	if res.Loading || !res.IsTemplate() {
		return Essay{}, false, nil
	}
	if !actor.Privileged || !actor.Known() {
		return Essay{}, false, nil
	}

	template := *res.Essay
	if template.Section == "" || template.Slug == "" {
		return Essay{}, false, nil
	}

	key := template.Section + "/" + template.Slug

	p.mu.Lock()
	if p.inFlight[key] || p.settled[key] {
		p.mu.Unlock()
		return Essay{}, false, nil
	}
	p.inFlight[key] = true
	p.mu.Unlock()

	created, err := p.repo.Create(ctx, CreateEssay{
		Slug:               template.Slug,
		Section:            template.Section,
		Title:              template.Title,
		Subtitle:           "",
		AuthorName:         template.AuthorName,
		ContentHTML:        template.ContentHTML,
		ContentJSON:        template.ContentJSON,
		Status:             StatusDraft,
		Version:            1,
		ReadingTimeMinutes: 1,
		UpdatedBy:          actor.Identity,
	})

	p.mu.Lock()
	delete(p.inFlight, key)
	p.settled[key] = true
	p.mu.Unlock()

	if err != nil {
		provErr := &ProvisionError{Section: template.Section, Slug: template.Slug, Err: err}
		if p.logger != nil {
			p.logger.Error("auto-provisioning failed, keeping template",
				"section", template.Section, "slug", template.Slug, "error", err)
		}
		return Essay{}, false, provErr
	}

	if p.logger != nil {
		p.logger.Info("provisioned essay",
			"id", created.ID, "section", created.Section, "slug", created.Slug)
	}
	return created, true, nil
}
