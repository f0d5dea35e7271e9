package content

import (
	"context"
	"testing"
	"time"

	"go_polyseo/internal/model"
	"go_polyseo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLanguage string

func (s staticLanguage) Default(context.Context) (string, error) { return string(s), nil }

type recorder struct{ events []Event }

func (r *recorder) HandleContentEvent(_ context.Context, ev Event) { r.events = append(r.events, ev) }

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	d := NewDispatcher()
	d.Subscribe(rec)
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(testutil.OpenDB(t), staticLanguage("en"), d, testutil.Logger()).
		WithClock(func() time.Time { return clock })
	return svc, rec
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		item model.Content
		want string
	}{
		{"untagged post", model.Content{Type: "post", Slug: "hello"}, "/hello/"},
		{"default language page", model.Content{Type: "page", Slug: "about", Language: "en"}, "/about/"},
		{"translated post", model.Content{Type: "post", Slug: "bonjour", Language: "fr"}, "/fr/bonjour/"},
		{"custom type", model.Content{Type: "product", Slug: "mug", Language: "de"}, "/de/product/mug/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Address(&tt.item, "en"))
		})
	}
}

func TestTermAddress(t *testing.T) {
	assert.Equal(t, "/category/news/", TermAddress(&model.Term{Taxonomy: "category", Slug: "news"}, "en"))
	assert.Equal(t, "/fr/tag/actu/", TermAddress(&model.Term{Taxonomy: "post_tag", Slug: "actu", Language: "fr"}, "en"))
	assert.Equal(t, "/genre/jazz/", TermAddress(&model.Term{Taxonomy: "genre", Slug: "jazz"}, "en"))
}

func TestQueryPublishedLanguageFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, c := range []model.Content{
		{Type: "post", Slug: "legacy", Status: "publish"},
		{Type: "post", Slug: "english", Status: "publish", Language: "en"},
		{Type: "post", Slug: "french", Status: "publish", Language: "fr"},
		{Type: "post", Slug: "draft", Status: "draft", Language: "en"},
		{Type: "page", Slug: "about", Status: "publish"},
	} {
		c := c
		require.NoError(t, svc.Create(ctx, &c))
	}

	slugs := func(items []model.Content) []string {
		out := make([]string, 0, len(items))
		for _, i := range items {
			out = append(out, i.Slug)
		}
		return out
	}

	repo := svc.Repository()
	items, err := repo.QueryPublished(ctx, []string{"post"}, LanguageFilter{DefaultCode: "en"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"legacy", "english"}, slugs(items))

	items, err = repo.QueryPublished(ctx, []string{"post"}, LanguageFilter{Code: "en", DefaultCode: "en"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"legacy", "english"}, slugs(items))

	items, err = repo.QueryPublished(ctx, []string{"post"}, LanguageFilter{Code: "fr", DefaultCode: "en"})
	require.NoError(t, err)
	assert.Equal(t, []string{"french"}, slugs(items))

	items, err = repo.QueryPublished(ctx, nil, LanguageFilter{DefaultCode: "en"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFindPublishedByAddress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	en := model.Content{Type: "post", Slug: "hello", Status: "publish"}
	fr := model.Content{Type: "post", Slug: "hello", Status: "publish", Language: "fr"}
	draft := model.Content{Type: "page", Slug: "hidden", Status: "draft"}
	for _, c := range []*model.Content{&en, &fr, &draft} {
		require.NoError(t, svc.Create(ctx, c))
	}

	repo := svc.Repository()
	got, err := repo.FindPublishedByAddress(ctx, "/hello", "en")
	require.NoError(t, err)
	assert.Equal(t, en.ID, got.ID)

	got, err = repo.FindPublishedByAddress(ctx, "/fr/hello/", "en")
	require.NoError(t, err)
	assert.Equal(t, fr.ID, got.ID)

	_, err = repo.FindPublishedByAddress(ctx, "/hidden/", "en")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindPublishedByAddress(ctx, "/", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t)

	c := model.Content{Type: "post", Slug: "first", Status: "publish", Language: "fr"}
	require.NoError(t, svc.Create(ctx, &c))

	newSlug := "renamed"
	_, err := svc.Update(ctx, c.ID, Patch{Slug: &newSlug})
	require.NoError(t, err)
	require.NoError(t, svc.Trash(ctx, c.ID))
	restored, err := svc.Restore(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublish, restored.Status)
	require.NoError(t, svc.Delete(ctx, c.ID))

	require.Len(t, rec.events, 5)
	kinds := []EventKind{EventSaved, EventSaved, EventTrashed, EventRestored, EventDeleted}
	for i, k := range kinds {
		assert.Equal(t, k, rec.events[i].Kind, "event %d", i)
		assert.Equal(t, c.ID, rec.events[i].ContentID())
		assert.Equal(t, "en", rec.events[i].DefaultLanguage)
	}

	assert.Nil(t, rec.events[0].Before)
	assert.Equal(t, "/fr/first/", rec.events[0].AfterAddress)
	assert.Equal(t, "/fr/first/", rec.events[1].BeforeAddress)
	assert.Equal(t, "/fr/renamed/", rec.events[1].AfterAddress)
	assert.Equal(t, model.ContentStatusTrash, rec.events[2].After.Status)
	assert.Equal(t, model.ContentStatusTrash, rec.events[3].Before.Status)
	assert.Nil(t, rec.events[4].After)

	_, err = svc.Repository().Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	c := model.Content{Type: "page", Slug: "about", Status: "draft"}
	require.NoError(t, svc.Create(ctx, &c))

	_, err := svc.Restore(ctx, c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "restore requires trash")

	require.NoError(t, svc.Trash(ctx, c.ID))
	assert.ErrorIs(t, svc.Trash(ctx, c.ID), ErrInvalidTransition)

	title := "About"
	_, err = svc.Update(ctx, c.ID, Patch{Title: &title})
	assert.ErrorIs(t, err, ErrInvalidTransition, "trashed items are read-only")

	restored, err := svc.Restore(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusDraft, restored.Status, "restores the pre-trash status")

	bad := "trash"
	_, err = svc.Update(ctx, c.ID, Patch{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	slug := "Not A Slug"
	_, err = svc.Update(ctx, c.ID, Patch{Slug: &slug})
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestTermEvents(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t)

	term := model.Term{Taxonomy: "category", Slug: "news", Name: "News"}
	require.NoError(t, svc.SaveTerm(ctx, &term))
	term.Name = "Latest news"
	require.NoError(t, svc.SaveTerm(ctx, &term))
	require.NoError(t, svc.DeleteTerm(ctx, term.ID))

	require.Len(t, rec.events, 3)
	assert.Equal(t, EventTermSaved, rec.events[0].Kind)
	assert.Equal(t, EventTermDeleted, rec.events[2].Kind)
	assert.Equal(t, "news", rec.events[2].Term.Slug)
	assert.ErrorIs(t, svc.DeleteTerm(ctx, term.ID), ErrNotFound)
}
