package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go_polyseo/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrInvalidSlug is returned for empty or malformed slugs.
	ErrInvalidSlug = errors.New("content: invalid slug")
	// ErrInvalidStatus is returned for statuses Update cannot set.
	ErrInvalidStatus = errors.New("content: invalid status")
	// ErrInvalidTransition is returned when the item is not in the required state.
	ErrInvalidTransition = errors.New("content: invalid transition")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// DefaultLanguager resolves the default language code.
type DefaultLanguager interface {
	Default(ctx context.Context) (string, error)
}

// Service mutates content and publishes lifecycle events.
type Service struct {
	db     *gorm.DB
	repo   *Repository
	langs  DefaultLanguager
	events *Dispatcher
	now    func() time.Time
	log    *logrus.Entry
}

// NewService creates a content service.
func NewService(db *gorm.DB, langs DefaultLanguager, events *Dispatcher, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		db:     db,
		repo:   NewRepository(db),
		langs:  langs,
		events: events,
		now:    time.Now,
		log:    log.WithField("component", "content-service"),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Repository returns the read side.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Patch lists the fields Update may change; nil fields are left untouched.
type Patch struct {
	Title    *string
	Slug     *string
	Body     *string
	Status   *string
	Language *string
}

func normalizeSlug(slug string) (string, error) {
	slug = strings.ToLower(strings.Trim(strings.TrimSpace(slug), "/"))
	if !slugPattern.MatchString(slug) {
		return "", ErrInvalidSlug
	}
	return slug, nil
}

func (s *Service) defaultLanguage(ctx context.Context) string {
	code, err := s.langs.Default(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to resolve default language")
		return ""
	}
	return code
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if ev.DefaultLanguage == "" {
		ev.DefaultLanguage = s.defaultLanguage(ctx)
	}
	if ev.Before != nil {
		ev.BeforeAddress = Address(ev.Before, ev.DefaultLanguage)
	}
	if ev.After != nil {
		ev.AfterAddress = Address(ev.After, ev.DefaultLanguage)
	}
	s.events.Publish(ctx, ev)
}

// Create stores a new item.
func (s *Service) Create(ctx context.Context, c *model.Content) error {
	slug, err := normalizeSlug(c.Slug)
	if err != nil {
		return err
	}
	c.Slug = slug
	if c.Type == "" {
		c.Type = model.ContentTypePost
	}
	switch c.Status {
	case "":
		c.Status = model.ContentStatusDraft
	case model.ContentStatusDraft, model.ContentStatusPublish:
	default:
		return ErrInvalidStatus
	}

	now := s.now()
	c.ID = 0
	c.ModifiedAt = now
	if c.Status == model.ContentStatusPublish && c.PublishedAt == nil {
		c.PublishedAt = &now
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create content: %w", err)
	}

	after := *c
	s.publish(ctx, Event{Kind: EventSaved, After: &after})
	return nil
}

// Update applies patch to the item. Trash state is managed by Trash/Restore.
func (s *Service) Update(ctx context.Context, id int, patch Patch) (*model.Content, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status == model.ContentStatusTrash {
		return nil, ErrInvalidTransition
	}

	after := *before
	if patch.Title != nil {
		after.Title = *patch.Title
	}
	if patch.Body != nil {
		after.Body = *patch.Body
	}
	if patch.Slug != nil {
		slug, err := normalizeSlug(*patch.Slug)
		if err != nil {
			return nil, err
		}
		after.Slug = slug
	}
	if patch.Language != nil {
		after.Language = strings.TrimSpace(*patch.Language)
	}
	if patch.Status != nil {
		switch *patch.Status {
		case model.ContentStatusDraft, model.ContentStatusPublish:
			after.Status = *patch.Status
		default:
			return nil, ErrInvalidStatus
		}
	}

	now := s.now()
	after.ModifiedAt = now
	if after.Status == model.ContentStatusPublish && after.PublishedAt == nil {
		after.PublishedAt = &now
	}
	if err := s.db.WithContext(ctx).Save(&after).Error; err != nil {
		return nil, fmt.Errorf("update content %d: %w", id, err)
	}

	result := after
	s.publish(ctx, Event{Kind: EventSaved, Before: before, After: &after})
	return &result, nil
}

// Trash moves the item to the trash, remembering its previous status.
func (s *Service) Trash(ctx context.Context, id int) error {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if before.Status == model.ContentStatusTrash {
		return ErrInvalidTransition
	}

	after := *before
	after.PreTrashStatus = before.Status
	after.Status = model.ContentStatusTrash
	after.ModifiedAt = s.now()
	if err := s.db.WithContext(ctx).Save(&after).Error; err != nil {
		return fmt.Errorf("trash content %d: %w", id, err)
	}

	s.publish(ctx, Event{Kind: EventTrashed, Before: before, After: &after})
	return nil
}

// Restore takes the item out of the trash, back to the status it had.
func (s *Service) Restore(ctx context.Context, id int) (*model.Content, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status != model.ContentStatusTrash {
		return nil, ErrInvalidTransition
	}

	after := *before
	after.Status = before.PreTrashStatus
	if after.Status == "" {
		after.Status = model.ContentStatusPublish
	}
	after.PreTrashStatus = ""
	after.ModifiedAt = s.now()
	if err := s.db.WithContext(ctx).Save(&after).Error; err != nil {
		return nil, fmt.Errorf("restore content %d: %w", id, err)
	}

	result := after
	s.publish(ctx, Event{Kind: EventRestored, Before: before, After: &after})
	return &result, nil
}

// Delete removes the item permanently.
func (s *Service) Delete(ctx context.Context, id int) error {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&model.Content{}, id).Error; err != nil {
		return fmt.Errorf("delete content %d: %w", id, err)
	}

	s.publish(ctx, Event{Kind: EventDeleted, Before: before})
	return nil
}

// SaveTerm inserts (ID == 0) or updates a taxonomy term.
func (s *Service) SaveTerm(ctx context.Context, t *model.Term) error {
	slug, err := normalizeSlug(t.Slug)
	if err != nil {
		return err
	}
	t.Slug = slug
	if t.Taxonomy == "" {
		t.Taxonomy = model.TaxonomyCategory
	}
	t.ModifiedAt = s.now()

	if t.ID != 0 {
		existing, err := s.repo.GetTerm(ctx, t.ID)
		if err != nil {
			return err
		}
		t.CreatedAt = existing.CreatedAt
	}
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("save term: %w", err)
	}

	saved := *t
	s.publish(ctx, Event{Kind: EventTermSaved, Term: &saved})
	return nil
}

// DeleteTerm removes a taxonomy term.
func (s *Service) DeleteTerm(ctx context.Context, id int) error {
	t, err := s.repo.GetTerm(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&model.Term{}, id).Error; err != nil {
		return fmt.Errorf("delete term %d: %w", id, err)
	}

	s.publish(ctx, Event{Kind: EventTermDeleted, Term: t})
	return nil
}
