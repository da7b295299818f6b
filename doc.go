// Package verdant is the Composition Root for the verdant content
// engine.
//
// It connects the essay lifecycle logic (Domain Layer) with the storage
// adapters (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Verdant manages versioned essay-style documents keyed by (section,
// slug). The core decides which variant of a document a visitor sees —
// a persisted record, a seeded sample, or an ephemeral template — and
// moves documents through their draft/published lifecycle. Storage is
// behind core.Repository, so the same machine runs against a local
// Markdown vault, PostgreSQL, or a remote HTTP document store.
//
// Features:
//
//   - **Resolution**: a pure mapping from (section, slug) plus the
//     fetched collection onto one concrete essay variant.
//   - **Auto-provisioning**: privileged editors landing on a missing
//     slug get a persisted record created exactly once, in place.
//   - **Edit sessions**: edit-mode gating, debounced autosave, and
//     save branching for real vs. template documents.
//   - **Publication**: idempotent draft ⇄ published transitions with
//     version bookkeeping.
//   - **Adapters**: Markdown + frontmatter vault (with change
//     watching), PostgreSQL, and a REST client for remote stores.
//
// Usage:
//
//	// Initialize service with functional options
//	svc, err := verdant.New("./essays",
//		verdant.WithAdapter("fs"),
//		verdant.WithLogger(logger),
//	)
//
//	// Drive a page navigation
//	vc := verdant.NewViewController(svc, actor, route, logger)
//	state, err := vc.Load(ctx)
package verdant
