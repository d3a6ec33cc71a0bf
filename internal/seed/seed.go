// Package seed fills an empty list with demo items for local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/service/bucketlist"
)

// Demo actors. Their emails make them owners of what they create, so the
// demo list shows both owned and read-only items.
var (
	Maya = models.Actor{DisplayName: "Maya Torres", Email: "maya@example.com"}
	Jun  = models.Actor{DisplayName: "Jun Park", Email: "jun@example.com"}
)

type seedComment struct {
	author models.Actor
	text   string
}

type seedItem struct {
	author      models.Actor
	title       string
	description string
	completed   bool
	comments    []seedComment
}

func demoItems() []seedItem {
	return []seedItem{
		{
			author:      Maya,
			title:       "See the northern lights",
			description: "Tromsø in February.\nBook the aurora cabin early.",
			comments: []seedComment{
				{author: Jun, text: "I'm in if we go in 2026"},
				{author: Maya, text: "Deal. I'll check flights."},
			},
		},
		{
			author:      Jun,
			title:       "Learn to make fresh pasta",
			description: "Tagliatelle first, then ravioli.",
			completed:   true,
			comments: []seedComment{
				{author: Maya, text: "The ravioli were excellent"},
			},
		},
		{
			author:      Maya,
			title:       "Run a half marathon",
			description: "Pick a flat course for the first one.",
		},
	}
}

// Seeder writes demo items through the same sessions the server uses
type Seeder struct {
	deps   bucketlist.Dependencies
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(deps bucketlist.Dependencies, logger *slog.Logger) *Seeder {
	return &Seeder{
		deps:   deps,
		logger: logger,
	}
}

// Clear deletes every item in the list and returns how many were removed
func (s *Seeder) Clear(ctx context.Context) (int, error) {
	items, err := s.deps.Loader.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}
	for _, item := range items {
		if err := s.deps.Items.Delete(ctx, item.ID); err != nil {
			return 0, fmt.Errorf("delete item %s: %w", item.ID, err)
		}
	}
	return len(items), nil
}

// Run creates the demo items and returns their ids in creation order
func (s *Seeder) Run(ctx context.Context) ([]string, error) {
	sessions := map[string]*bucketlist.Session{}
	sessionFor := func(actor models.Actor) *bucketlist.Session {
		if sess, ok := sessions[actor.Email]; ok {
			return sess
		}
		sess := bucketlist.NewSession(actor, s.deps)
		sessions[actor.Email] = sess
		return sess
	}

	var ids []string
	for _, item := range demoItems() {
		id, _, err := sessionFor(item.author).AddItem(ctx, &svc.CreateItemRequest{
			Title:       item.title,
			Description: item.description,
		})
		if err != nil {
			return ids, fmt.Errorf("create %q: %w", item.title, err)
		}
		ids = append(ids, id)

		for _, c := range item.comments {
			if _, _, err := sessionFor(c.author).AddComment(ctx, id, &svc.AddCommentRequest{Text: c.text}); err != nil {
				return ids, fmt.Errorf("comment on %q: %w", item.title, err)
			}
		}

		if item.completed {
			if _, err := sessionFor(item.author).CompleteItem(ctx, id); err != nil {
				return ids, fmt.Errorf("complete %q: %w", item.title, err)
			}
		}

		s.logger.Info("seeded item",
			"id", id,
			"title", item.title,
			"comments", len(item.comments),
		)
	}
	return ids, nil
}
