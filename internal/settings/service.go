package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go_polyseo/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChangeFunc is called after a snapshot has been replaced.
type ChangeFunc func(ctx context.Context, old, updated *Snapshot)

// Service persists settings and serves the current snapshot.
type Service struct {
	db       *gorm.DB
	mu       sync.Mutex
	current  atomic.Pointer[Snapshot]
	onChange []ChangeFunc
	log      *logrus.Entry
}

// NewService loads settings from the database. Missing or unreadable rows
// fall back to defaults.
func NewService(ctx context.Context, db *gorm.DB, log *logrus.Entry) (*Service, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Service{db: db, log: log.WithField("component", "settings")}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OnChange registers fn to run after every successful save.
func (s *Service) OnChange(fn ChangeFunc) {
	s.onChange = append(s.onChange, fn)
}

// Current returns the active snapshot.
func (s *Service) Current() *Snapshot {
	return s.current.Load()
}

// Reload re-reads every settings row.
func (s *Service) Reload(ctx context.Context) error {
	var rows []model.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	snap := Defaults()
	for _, row := range rows {
		var err error
		switch row.Key {
		case model.SettingKeySitemap:
			snap.Sitemap, err = decodeSitemap(row.Value)
		case model.SettingKeyCatchAll:
			err = json.Unmarshal(row.Value, &snap.CatchAll)
			snap.CatchAll = NormalizeCatchAll(snap.CatchAll)
		case model.SettingKeyRobots:
			err = json.Unmarshal(row.Value, &snap.Robots)
			snap.Robots = NormalizeRobots(snap.Robots)
		default:
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("key", row.Key).Warn("Ignoring unreadable settings row")
		}
	}
	s.current.Store(&snap)
	return nil
}

// decodeSitemap reads a stored sitemap row over the defaults. A stored
// priority map replaces the default one instead of being merged into it.
func decodeSitemap(raw []byte) (SitemapSettings, error) {
	v := DefaultSitemap()
	v.Priorities = nil
	if err := json.Unmarshal(raw, &v); err != nil {
		return DefaultSitemap(), err
	}
	if v.Priorities == nil {
		v.Priorities = DefaultSitemap().Priorities
	}
	return NormalizeSitemap(v), nil
}

// SaveSitemap normalizes and persists sitemap settings.
func (s *Service) SaveSitemap(ctx context.Context, v SitemapSettings) (*Snapshot, error) {
	v = NormalizeSitemap(v)
	return s.save(ctx, model.SettingKeySitemap, v, func(snap *Snapshot) { snap.Sitemap = v })
}

// SaveCatchAll normalizes and persists the catch-all policy.
func (s *Service) SaveCatchAll(ctx context.Context, v CatchAllPolicy) (*Snapshot, error) {
	v = NormalizeCatchAll(v)
	return s.save(ctx, model.SettingKeyCatchAll, v, func(snap *Snapshot) { snap.CatchAll = v })
}

// SaveRobots normalizes and persists robots.txt settings.
func (s *Service) SaveRobots(ctx context.Context, v RobotsSettings) (*Snapshot, error) {
	v = NormalizeRobots(v)
	return s.save(ctx, model.SettingKeyRobots, v, func(snap *Snapshot) { snap.Robots = v })
}

func (s *Service) save(ctx context.Context, key string, value any, apply func(*Snapshot)) (*Snapshot, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s settings: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var row model.Setting
	err = s.db.WithContext(ctx).Where("setting_key = ?", key).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = model.Setting{Key: key, Value: datatypes.JSON(raw)}
		err = s.db.WithContext(ctx).Create(&row).Error
	case err == nil:
		err = s.db.WithContext(ctx).Model(&row).Update("setting_value", datatypes.JSON(raw)).Error
	}
	if err != nil {
		return nil, fmt.Errorf("save %s settings: %w", key, err)
	}

	old := s.current.Load()
	next := *old
	apply(&next)
	s.current.Store(&next)

	for _, fn := range s.onChange {
		fn(ctx, old, &next)
	}
	return &next, nil
}
