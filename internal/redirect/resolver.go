package redirect

import (
	"context"
	"errors"
	"net/http"

	"go_polyseo/internal/metrics"
	"go_polyseo/internal/model"
	"go_polyseo/internal/pathrule"
	"go_polyseo/internal/settings"

	"github.com/sirupsen/logrus"
)

// maxChainHops bounds the cycle check over stored redirects.
const maxChainHops = 10

// OutcomeKind is the terminal state of a resolution.
type OutcomeKind int

const (
	NotFound OutcomeKind = iota
	Sent
	Gone
)

func (k OutcomeKind) String() string {
	switch k {
	case Sent:
		return "sent"
	case Gone:
		return "gone"
	}
	return "not_found"
}

// Outcome is the result of resolving an unmatched request.
type Outcome struct {
	Kind     OutcomeKind
	Status   int
	Location string
	// CatchAll is set when the redirect came from the catch-all policy.
	CatchAll bool
	RecordID int
}

func notFound() Outcome { return Outcome{Kind: NotFound, Status: http.StatusNotFound} }

// Lookup finds stored redirects.
type Lookup interface {
	FindLatestByOldURL(ctx context.Context, oldURL string) (*model.Redirect, error)
}

// AddressResolver returns the current address of a published content item.
type AddressResolver interface {
	PublishedAddress(ctx context.Context, id int, defaultLang string) (string, error)
}

// DefaultLanguager returns the default language code.
type DefaultLanguager interface {
	Default(ctx context.Context) (string, error)
}

// SettingsSource returns the active settings snapshot.
type SettingsSource interface {
	Current() *settings.Snapshot
}

// Resolver decides what to answer for a request no content matched: a stored
// redirect, the catch-all redirect, or not found.
type Resolver struct {
	store    Lookup
	content  AddressResolver
	langs    DefaultLanguager
	settings SettingsSource
	siteURL  string
	metrics  metrics.Publisher
	log      *logrus.Entry
}

// NewResolver creates a Resolver.
func NewResolver(store Lookup, content AddressResolver, langs DefaultLanguager, s SettingsSource, siteURL string, pub metrics.Publisher, log *logrus.Entry) *Resolver {
	if pub == nil {
		pub = metrics.NoOpPublisher{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{
		store:    store,
		content:  content,
		langs:    langs,
		settings: s,
		siteURL:  siteURL,
		metrics:  pub,
		log:      log.WithField("component", "redirect-resolver"),
	}
}

// HomeURL returns the absolute home page address.
func (r *Resolver) HomeURL() string {
	return r.siteURL + "/"
}

// Resolve resolves path once. It never fails: storage errors are logged and
// treated as "no redirect".
func (r *Resolver) Resolve(ctx context.Context, path string) Outcome {
	out := r.resolve(ctx, path)
	tag := out.Kind.String()
	if out.Kind == Sent && out.CatchAll {
		tag = "catch_all"
	}
	r.metrics.Incr("redirect.resolve", metrics.Tag("outcome", tag))
	return out
}

func (r *Resolver) resolve(ctx context.Context, path string) Outcome {
	rec := r.lookup(ctx, path)
	if rec != nil {
		switch {
		case rec.RedirectType == model.RedirectGone:
			return Outcome{Kind: Gone, Status: http.StatusGone, RecordID: rec.ID}
		case rec.Destination() != "":
			if r.cyclic(ctx, path, rec.Destination()) {
				r.log.WithFields(logrus.Fields{"path": path, "id": rec.ID}).Warn("Redirect chain loops, ignoring")
				return notFound()
			}
			return Outcome{Kind: Sent, Status: rec.RedirectType, Location: rec.Destination(), RecordID: rec.ID}
		}
	}
	return r.catchAll(ctx, path)
}

// lookup tries the exact path, then the path with its trailing slash toggled.
func (r *Resolver) lookup(ctx context.Context, path string) *model.Redirect {
	for _, candidate := range []string{path, toggleSlash(path)} {
		if candidate == "" {
			continue
		}
		rec, err := r.store.FindLatestByOldURL(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			r.log.WithError(err).WithField("path", candidate).Error("Redirect lookup failed")
			return nil
		}
		return rec
	}
	return nil
}

// cyclic follows stored redirects from dest and reports whether they lead
// back to a location already visited.
func (r *Resolver) cyclic(ctx context.Context, from, dest string) bool {
	seen := map[string]struct{}{canonical(from, r.siteURL): {}}
	cur := dest
	for i := 0; i < maxChainHops; i++ {
		key := canonical(cur, r.siteURL)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		if !isLocal(cur, r.siteURL) {
			return false
		}
		next := r.lookup(ctx, key+"/")
		if next == nil || next.RedirectType == model.RedirectGone || next.Destination() == "" {
			return false
		}
		cur = next.Destination()
	}
	return false
}

func (r *Resolver) catchAll(ctx context.Context, path string) Outcome {
	policy := r.settings.Current().CatchAll
	if !policy.Enabled {
		return notFound()
	}
	if pathrule.Excluded(path) || pathrule.MatchAny(path, policy.ExcludePatterns) {
		return notFound()
	}

	dest := r.destination(ctx, policy)
	if SameTarget(path, dest, r.siteURL) {
		r.log.WithFields(logrus.Fields{"path": path, "destination": dest}).Warn("Catch-all destination equals request, not redirecting")
		return notFound()
	}
	return Outcome{Kind: Sent, Status: policy.RedirectType, Location: dest, CatchAll: true}
}

func (r *Resolver) destination(ctx context.Context, policy settings.CatchAllPolicy) string {
	switch policy.DestinationType {
	case settings.DestinationURL:
		if policy.DestinationURL != "" {
			return policy.DestinationURL
		}
	case settings.DestinationContentItem:
		def, err := r.langs.Default(ctx)
		if err != nil {
			r.log.WithError(err).Error("Failed to load default language")
			break
		}
		addr, err := r.content.PublishedAddress(ctx, policy.DestinationContentID, def)
		if err == nil {
			return r.siteURL + addr
		}
		r.log.WithError(err).WithField("content_id", policy.DestinationContentID).Warn("Catch-all destination unavailable, using home")
	}
	return r.HomeURL()
}
