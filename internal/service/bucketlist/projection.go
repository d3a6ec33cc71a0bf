package bucketlist

import (
	"cmp"
	"slices"
	"time"

	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/services"
)

// Project derives what a presentation renders for actor: items newest
// first, each item's comments newest first, plus the actor's capabilities.
// It never modifies items.
func Project(items []models.Item, actor models.Actor, authz services.ResourceAuthorizer) []models.ItemView {
	sorted := models.CloneItems(items)
	slices.SortStableFunc(sorted, func(a, b models.Item) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	views := make([]models.ItemView, 0, len(sorted))
	for _, item := range sorted {
		views = append(views, projectItem(item, actor, authz))
	}
	return views
}

func projectItem(item models.Item, actor models.Actor, authz services.ResourceAuthorizer) models.ItemView {
	comments := item.Comments
	item.Comments = nil
	slices.SortStableFunc(comments, func(a, b models.Comment) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	owner := authz.Owns(actor, item)
	view := models.ItemView{
		Item:           item,
		Comments:       make([]models.CommentView, 0, len(comments)),
		CanEdit:        owner,
		CanDelete:      owner,
		CanManagePhoto: owner,
	}
	for _, c := range comments {
		view.Comments = append(view.Comments, models.CommentView{
			Comment: c,
			CanEdit: authz.Owns(actor, c),
			Empty:   c.IsEmpty(),
		})
	}
	return view
}

// newestFirst orders by timestamp descending, then id descending so equal
// timestamps still render in a stable order.
func newestFirst(aAt, bAt time.Time, aID, bID string) int {
	if c := bAt.Compare(aAt); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}
