package bucketlist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bucketlist/internal/config"
	"bucketlist/internal/domain"
	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/services"
	svc "bucketlist/internal/domain/services/bucketlist"
)

// Dependencies are the collaborators shared by every session
type Dependencies struct {
	Loader     svc.Loader
	Items      svc.ItemMutator
	Comments   svc.CommentMutator
	Images     svc.ImageHost
	Authorizer services.ResourceAuthorizer
	// Publisher is optional; nil disables change events
	Publisher svc.ChangePublisher
	Logger    *slog.Logger
	// RemoteTimeout bounds each call into the store or image host
	RemoteTimeout time.Duration
}

// Session is one actor's view of the shared list.
//
// It owns the local item cache. Intents run one at a time: the remote
// write completes, then the cache is replaced by a full reload. A failed
// intent leaves the cache exactly as it was.
type Session struct {
	deps  Dependencies
	actor models.Actor

	mu     sync.Mutex
	items  []models.Item
	loaded bool
}

// NewSession creates a session for actor with an empty cache
func NewSession(actor models.Actor, deps Dependencies) *Session {
	if deps.RemoteTimeout <= 0 {
		deps.RemoteTimeout = config.DefaultRemoteTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Session{
		deps:  deps,
		actor: actor,
	}
}

// Actor returns the identity this session acts for
func (s *Session) Actor() models.Actor {
	return s.actor
}

// Refresh discards the cache and reloads it from the store. On failure the
// previous list is kept and the error returned.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// List reloads and projects the list. If the reload fails after an earlier
// success the previous list is served; the error is only returned when
// nothing was ever loaded.
func (s *Session) List(ctx context.Context) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil && !s.loaded {
		return nil, err
	}
	return s.viewLocked(), nil
}

// AddItem creates an item authored by the session's actor
func (s *Session) AddItem(ctx context.Context, req *svc.CreateItemRequest) (string, []models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActor(); err != nil {
		return "", nil, err
	}
	if err := s.checkPendingPhoto(req.Photo); err != nil {
		return "", nil, err
	}

	var id string
	views, err := s.mutateLocked(ctx, svc.ChangeItemCreated, "", func(ctx context.Context) error {
		var err error
		id, err = s.deps.Items.Create(ctx, req, s.actor)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return id, views, nil
}

// EditItem changes title and description. Owner only.
func (s *Session) EditItem(ctx context.Context, id string, req *svc.UpdateItemRequest) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedItemLocked(ctx, id); err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemUpdated, id, func(ctx context.Context) error {
		return s.deps.Items.Update(ctx, id, req)
	})
}

// DeleteItem removes an item. Owner only.
func (s *Session) DeleteItem(ctx context.Context, id string) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedItemLocked(ctx, id); err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemDeleted, id, func(ctx context.Context) error {
		return s.deps.Items.Delete(ctx, id)
	})
}

// CompleteItem marks an item done. Any signed-in actor may do this.
func (s *Session) CompleteItem(ctx context.Context, id string) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActor(); err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemCompleted, id, func(ctx context.Context) error {
		return s.deps.Items.SetCompleted(ctx, id, true)
	})
}

// UndoComplete reopens an item and removes its proof photo
func (s *Session) UndoComplete(ctx context.Context, id string) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActor(); err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemReopened, id, func(ctx context.Context) error {
		return s.deps.Items.SetCompleted(ctx, id, false)
	})
}

// AttachItemPhoto sets a photo uploaded earlier by the actor on an item.
// Owner only.
func (s *Session) AttachItemPhoto(ctx context.Context, id string, photo *models.Photo) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedItemLocked(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkPendingPhoto(photo); err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemPhotoAttached, id, func(ctx context.Context) error {
		return s.deps.Items.AttachPhoto(ctx, id, photo)
	})
}

// UploadItemPhoto uploads an image and attaches it to an item. Owner only.
// An upload failure leaves the item document untouched.
func (s *Session) UploadItemPhoto(ctx context.Context, id string, upload *svc.UploadRequest) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedItemLocked(ctx, id); err != nil {
		return nil, err
	}
	photo, err := s.uploadLocked(ctx, upload)
	if err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemPhotoAttached, id, func(ctx context.Context) error {
		return s.deps.Items.AttachPhoto(ctx, id, photo)
	})
}

// DetachItemPhoto clears an item's photo. Owner only.
func (s *Session) DetachItemPhoto(ctx context.Context, id string) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedItemLocked(ctx, id); err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeItemPhotoDetached, id, func(ctx context.Context) error {
		return s.deps.Items.DetachPhoto(ctx, id)
	})
}

// UploadPhoto stores an image ahead of the item or comment it will belong to
func (s *Session) UploadPhoto(ctx context.Context, upload *svc.UploadRequest) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActor(); err != nil {
		return nil, err
	}
	return s.uploadLocked(ctx, upload)
}

// AddComment appends a comment by the session's actor
func (s *Session) AddComment(ctx context.Context, itemID string, req *svc.AddCommentRequest) (*models.Comment, []models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActor(); err != nil {
		return nil, nil, err
	}
	if err := s.checkPendingPhoto(req.Photo); err != nil {
		return nil, nil, err
	}

	var comment *models.Comment
	views, err := s.mutateLocked(ctx, svc.ChangeCommentAdded, itemID, func(ctx context.Context) error {
		var err error
		comment, err = s.deps.Comments.Add(ctx, itemID, req, s.actor)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return comment, views, nil
}

// EditComment changes a comment's text. Comment author only.
func (s *Session) EditComment(ctx context.Context, itemID, commentID string, req *svc.EditCommentRequest) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ownedCommentLocked(ctx, itemID, commentID)
	if err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeCommentEdited, itemID, func(ctx context.Context) error {
		return s.deps.Comments.Edit(ctx, item, commentID, req)
	})
}

// RemoveComment deletes a comment. Comment author only.
func (s *Session) RemoveComment(ctx context.Context, itemID, commentID string) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ownedCommentLocked(ctx, itemID, commentID)
	if err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeCommentRemoved, itemID, func(ctx context.Context) error {
		return s.deps.Comments.Remove(ctx, item, commentID)
	})
}

// UploadCommentPhoto uploads an image and sets it on a comment. Comment author only.
func (s *Session) UploadCommentPhoto(ctx context.Context, itemID, commentID string, upload *svc.UploadRequest) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ownedCommentLocked(ctx, itemID, commentID)
	if err != nil {
		return nil, err
	}
	photo, err := s.uploadLocked(ctx, upload)
	if err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeCommentPhotoAttached, itemID, func(ctx context.Context) error {
		return s.deps.Comments.AttachPhoto(ctx, item, commentID, photo)
	})
}

// DetachCommentPhoto clears a comment's photo. Comment author only.
func (s *Session) DetachCommentPhoto(ctx context.Context, itemID, commentID string) ([]models.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ownedCommentLocked(ctx, itemID, commentID)
	if err != nil {
		return nil, err
	}
	return s.mutateLocked(ctx, svc.ChangeCommentPhotoDetached, itemID, func(ctx context.Context) error {
		return s.deps.Comments.DetachPhoto(ctx, item, commentID)
	})
}

// mutateLocked runs one remote write under the remote timeout, then
// reconciles. The cache is only ever replaced by a successful reload.
func (s *Session) mutateLocked(ctx context.Context, changeType, itemID string, write func(context.Context) error) ([]models.ItemView, error) {
	wctx, cancel := context.WithTimeout(ctx, s.deps.RemoteTimeout)
	err := write(wctx)
	cancel()
	if err != nil {
		err = classify(changeType, err)
		s.deps.Logger.Warn("intent failed",
			"change", changeType,
			"item_id", itemID,
			"actor", s.actor.Email,
			"error", err,
		)
		return nil, err
	}

	// The write is durable at this point; a failed reload only means the
	// view lags until the next refresh.
	_ = s.refreshLocked(ctx)

	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(svc.Change{
			Type:   changeType,
			ItemID: itemID,
			Actor:  s.actor.Snapshot(),
		})
	}
	return s.viewLocked(), nil
}

func (s *Session) refreshLocked(ctx context.Context) error {
	rctx, cancel := context.WithTimeout(ctx, s.deps.RemoteTimeout)
	defer cancel()

	items, err := s.deps.Loader.LoadAll(rctx)
	if err != nil {
		err = classify("refresh", err)
		s.deps.Logger.Error("refresh failed, keeping previous list",
			"actor", s.actor.Email,
			"cached_items", len(s.items),
			"error", err,
		)
		return err
	}

	s.items = items
	s.loaded = true
	return nil
}

func (s *Session) uploadLocked(ctx context.Context, upload *svc.UploadRequest) (*models.Photo, error) {
	if s.deps.Images == nil {
		return nil, &domain.UploadError{Message: "image uploads are not configured"}
	}

	uctx, cancel := context.WithTimeout(ctx, s.deps.RemoteTimeout)
	defer cancel()

	res, err := s.deps.Images.Upload(uctx, upload)
	if err != nil {
		return nil, classify("upload photo", err)
	}

	photo := photoFromUpload(res.URL, res.FileID, res.Format, upload.Filename, s.actor.Email, now())
	if !photo.Complete() {
		return nil, &domain.UploadError{Message: "image host returned an incomplete reference"}
	}
	return photo, nil
}

func (s *Session) viewLocked() []models.ItemView {
	return Project(s.items, s.actor, s.deps.Authorizer)
}

func (s *Session) requireActor() error {
	if !s.actor.Authenticated() {
		return &domain.UnauthorizedError{Message: "sign in to change the list"}
	}
	return nil
}

// checkPendingPhoto accepts a photo reference supplied by the client only
// when it is complete and the actor uploaded it.
func (s *Session) checkPendingPhoto(photo *models.Photo) error {
	if photo == nil {
		return nil
	}
	if err := validatePhoto(photo); err != nil {
		return invalid(err)
	}
	if !strings.EqualFold(strings.TrimSpace(photo.UploadedBy), s.actor.Email) {
		return &domain.ForbiddenError{Message: "photo was uploaded by another user"}
	}
	return nil
}

// cachedItemLocked finds an item, and optionally one of its comments, in
// the local list. A miss triggers one reload so targets created by other
// sessions since the last refresh are found.
func (s *Session) cachedItemLocked(ctx context.Context, id, commentID string) (*models.Item, error) {
	refreshed := false
	if !s.loaded {
		if err := s.refreshLocked(ctx); err != nil {
			return nil, err
		}
		refreshed = true
	}
	for {
		item, err := s.findLocked(id, commentID)
		if err == nil || refreshed {
			return item, err
		}
		if err := s.refreshLocked(ctx); err != nil {
			return nil, err
		}
		refreshed = true
	}
}

func (s *Session) findLocked(id, commentID string) (*models.Item, error) {
	for idx := range s.items {
		if s.items[idx].ID != id {
			continue
		}
		item := s.items[idx].Clone()
		if commentID != "" {
			if _, cidx := item.FindComment(commentID); cidx < 0 {
				return nil, &domain.NotFoundError{Message: fmt.Sprintf("comment %s not found", commentID)}
			}
		}
		return &item, nil
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("item %s not found", id)}
}

func (s *Session) ownedItemLocked(ctx context.Context, id string) (*models.Item, error) {
	if err := s.requireActor(); err != nil {
		return nil, err
	}
	item, err := s.cachedItemLocked(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if err := s.deps.Authorizer.CanModify(s.actor, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Session) ownedCommentLocked(ctx context.Context, itemID, commentID string) (*models.Item, error) {
	if err := s.requireActor(); err != nil {
		return nil, err
	}
	item, err := s.cachedItemLocked(ctx, itemID, commentID)
	if err != nil {
		return nil, err
	}
	comment, _ := item.FindComment(commentID)
	if err := s.deps.Authorizer.CanModify(s.actor, comment); err != nil {
		return nil, err
	}
	return item, nil
}
