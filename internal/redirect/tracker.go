package redirect

import (
	"context"

	"go_polyseo/internal/content"
	"go_polyseo/internal/model"

	"github.com/sirupsen/logrus"
)

// Tracker records redirects as content moves, is trashed, restored or
// deleted. Storage failures are logged and the event is dropped.
type Tracker struct {
	store *Store
	log   *logrus.Entry
}

// NewTracker creates a Tracker.
func NewTracker(store *Store, log *logrus.Entry) *Tracker {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Tracker{store: store, log: log.WithField("component", "redirect-tracker")}
}

// HandleContentEvent implements content.Handler.
func (t *Tracker) HandleContentEvent(ctx context.Context, ev content.Event) {
	id := ev.ContentID()
	if id == 0 {
		return
	}
	log := t.log.WithFields(logrus.Fields{"content_id": id, "event": ev.Kind})

	switch ev.Kind {
	case content.EventSaved:
		if ev.Before != nil && ev.Before.IsPublished() && ev.After.IsPublished() && ev.BeforeAddress != ev.AfterAddress {
			t.insert(ctx, log, &model.Redirect{
				OldURL:               ev.BeforeAddress,
				NewURL:               model.SPtr(ev.AfterAddress),
				RedirectType:         model.RedirectMovedPermanently,
				ChangeType:           model.ChangeTypeChanged,
				DestinationContentID: model.UPtr(id),
			})
		}
		if ev.After.IsPublished() {
			t.resync(ctx, log, id, ev.AfterAddress)
		}

	case content.EventTrashed:
		if ev.Before.IsPublished() {
			t.insert(ctx, log, &model.Redirect{
				OldURL:          ev.BeforeAddress,
				RedirectType:    model.RedirectGone,
				ChangeType:      model.ChangeTypeTrashed,
				SourceContentID: model.UPtr(id),
			})
		}

	case content.EventRestored:
		t.deleteTrashed(ctx, log, id)
		if ev.After.IsPublished() {
			t.resync(ctx, log, id, ev.AfterAddress)
		}

	case content.EventDeleted:
		t.deleteTrashed(ctx, log, id)
		if wasPublic(ev.Before) {
			t.insert(ctx, log, &model.Redirect{
				OldURL:          ev.BeforeAddress,
				RedirectType:    model.RedirectGone,
				ChangeType:      model.ChangeTypeDeletedPermanently,
				SourceContentID: model.UPtr(id),
			})
		}
	}
}

// wasPublic reports whether c was published, directly or before being trashed.
func wasPublic(c *model.Content) bool {
	if c == nil {
		return false
	}
	return c.IsPublished() || (c.Status == model.ContentStatusTrash && c.PreTrashStatus == model.ContentStatusPublish)
}

func (t *Tracker) insert(ctx context.Context, log *logrus.Entry, r *model.Redirect) {
	id, err := t.store.Insert(ctx, r)
	if err != nil {
		log.WithError(err).Error("Failed to record redirect")
		return
	}
	log.WithFields(logrus.Fields{"id": id, "old_url": r.OldURL, "type": r.RedirectType}).Info("Recorded redirect")
}

func (t *Tracker) resync(ctx context.Context, log *logrus.Entry, id int, address string) {
	if err := t.store.ResyncLinks(ctx, id, address); err != nil {
		log.WithError(err).Error("Failed to resync redirects")
	}
}

func (t *Tracker) deleteTrashed(ctx context.Context, log *logrus.Entry, id int) {
	n, err := t.store.DeleteWhere(ctx, id, model.ChangeTypeTrashed)
	if err != nil {
		log.WithError(err).Error("Failed to remove trash redirect")
		return
	}
	if n > 0 {
		log.Debugf("Removed %d trash redirects", n)
	}
}

var _ content.Handler = (*Tracker)(nil)
