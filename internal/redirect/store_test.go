package redirect

import (
	"context"
	"testing"
	"time"

	"go_polyseo/internal/model"
	"go_polyseo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOldURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"/a/", "/a/"},
		{"a", "/a"},
		{"https://example.com/blog/post/?p=1", "/blog/post/"},
		{"https://example.com", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOldURL(tt.in), "in=%q", tt.in)
	}
}

func TestSameTarget(t *testing.T) {
	const site = "https://example.com"
	assert.True(t, SameTarget("/a/", "/a", site))
	assert.True(t, SameTarget("/", "https://example.com/", site))
	assert.True(t, SameTarget("/a", "https://example.com/a/?x=1", site))
	assert.False(t, SameTarget("/a", "/b", site))
	assert.False(t, SameTarget("/a", "https://other.test/a", site))
}

func TestStoreInsert(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))

	_, err := s.Insert(ctx, &model.Redirect{OldURL: " "})
	assert.ErrorIs(t, err, ErrEmptyOldURL)

	r := &model.Redirect{OldURL: "/a", NewURL: model.SPtr("/b"), RedirectType: 308}
	id, err := s.Insert(ctx, r)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, model.RedirectMovedPermanently, r.RedirectType)
	assert.Equal(t, model.ChangeTypeManual, r.ChangeType)

	gone := &model.Redirect{OldURL: "/c", NewURL: model.SPtr("/d"), RedirectType: 410}
	_, err = s.Insert(ctx, gone)
	require.NoError(t, err)
	got, err := s.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NewURL)
}

func TestStoreFindLatestByOldURL(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))

	_, err := s.FindLatestByOldURL(ctx, "/a")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, dest := range []string{"/first", "/second", "/third"} {
		_, err := s.Insert(ctx, &model.Redirect{OldURL: "/a", NewURL: model.SPtr(dest)})
		require.NoError(t, err)
	}
	got, err := s.FindLatestByOldURL(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, "/third", got.Destination())

	_, err = s.FindLatestByOldURL(ctx, "/a/")
	assert.ErrorIs(t, err, ErrNotFound, "lookup is exact")
}

func TestStoreUpdateFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))
	id, err := s.Insert(ctx, &model.Redirect{OldURL: "/a", NewURL: model.SPtr("/b")})
	require.NoError(t, err)

	gone := model.RedirectGone
	got, err := s.UpdateFields(ctx, id, Update{RedirectType: &gone})
	require.NoError(t, err)
	assert.Equal(t, model.RedirectGone, got.RedirectType)
	assert.Nil(t, got.NewURL)

	empty := ""
	_, err = s.UpdateFields(ctx, id, Update{OldURL: &empty})
	assert.ErrorIs(t, err, ErrEmptyOldURL)

	_, err = s.UpdateFields(ctx, id+100, Update{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))

	a, _ := s.Insert(ctx, &model.Redirect{OldURL: "/a", RedirectType: 410, ChangeType: model.ChangeTypeTrashed, SourceContentID: model.UPtr(7)})
	b, _ := s.Insert(ctx, &model.Redirect{OldURL: "/b", RedirectType: 410, ChangeType: model.ChangeTypeDeletedPermanently, SourceContentID: model.UPtr(7)})
	c, _ := s.Insert(ctx, &model.Redirect{OldURL: "/c", NewURL: model.SPtr("/d")})

	n, err := s.DeleteWhere(ctx, 7, model.ChangeTypeTrashed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.Get(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = s.DeleteByIDs(ctx, []int{b, c})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.DeleteByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreResyncLinks(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))

	moved, _ := s.Insert(ctx, &model.Redirect{OldURL: "/foo/", NewURL: model.SPtr("/bar/"), ChangeType: model.ChangeTypeChanged, DestinationContentID: model.UPtr(1)})
	sourced, _ := s.Insert(ctx, &model.Redirect{OldURL: "/old-home/", NewURL: model.SPtr("/elsewhere/"), SourceContentID: model.UPtr(1)})
	other, _ := s.Insert(ctx, &model.Redirect{OldURL: "/x/", NewURL: model.SPtr("/bar/"), DestinationContentID: model.UPtr(2)})

	require.NoError(t, s.ResyncLinks(ctx, 1, "/baz/"))

	got, err := s.Get(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, "/baz/", got.Destination())
	got, err = s.Get(ctx, sourced)
	require.NoError(t, err)
	assert.Equal(t, "/baz/", got.OldURL)
	got, err = s.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "/bar/", got.Destination(), "records of other content are untouched")

	// moving back to the original address leaves a self redirect, which is dropped
	require.NoError(t, s.ResyncLinks(ctx, 1, "/foo/"))
	_, err = s.Get(ctx, moved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreListUnverified(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	s := NewStore(gdb)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	checked := &model.Redirect{OldURL: "/checked", NewURL: model.SPtr("/n1"), ChangeType: model.ChangeTypeChanged}
	checked.CreatedAt = base
	fresh := &model.Redirect{OldURL: "/fresh", NewURL: model.SPtr("/n2"), ChangeType: model.ChangeTypeChanged}
	fresh.CreatedAt = base.Add(time.Hour)
	native := &model.Redirect{OldURL: "/native", NewURL: model.SPtr("/n3"), ChangeType: model.ChangeTypeChanged, HostNativeRedirect: true}
	manual := &model.Redirect{OldURL: "/manual", NewURL: model.SPtr("/n4"), ChangeType: model.ChangeTypeManual}
	for _, r := range []*model.Redirect{checked, fresh, native, manual} {
		_, err := s.Insert(ctx, r)
		require.NoError(t, err)
	}
	require.NoError(t, s.MarkChecked(ctx, checked.ID, false, base.Add(2*time.Hour)))

	got, err := s.ListUnverified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/fresh", got[0].OldURL, "never-checked records come first")
	assert.Equal(t, "/checked", got[1].OldURL)

	got, err = s.ListUnverified(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))
	for _, old := range []string{"/news/a", "/news/b", "/shop/c"} {
		_, err := s.Insert(ctx, &model.Redirect{OldURL: old, NewURL: model.SPtr("/x")})
		require.NoError(t, err)
	}

	items, total, err := s.List(ctx, ListFilter{Query: "news", PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, "/news/b", items[0].OldURL)
}

func TestCleaner(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.OpenDB(t))
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	insert := func(old, changeType string, age time.Duration) int {
		r := &model.Redirect{OldURL: old, NewURL: model.SPtr("/n"), ChangeType: changeType}
		if changeType != model.ChangeTypeChanged {
			r.RedirectType = model.RedirectGone
		}
		r.CreatedAt = now.Add(-age)
		id, err := s.Insert(ctx, r)
		require.NoError(t, err)
		return id
	}
	expired := insert("/expired", model.ChangeTypeChanged, 91*24*time.Hour)
	recent := insert("/recent", model.ChangeTypeChanged, 10*24*time.Hour)
	trashed := insert("/trashed", model.ChangeTypeTrashed, 400*24*time.Hour)

	c := NewCleaner(s, CleanerConfig{RetentionDays: 90}, nil, testutil.Logger()).
		WithClock(func() time.Time { return now })
	assert.Equal(t, int64(1), c.RunOnce(ctx))

	_, err := s.Get(ctx, expired)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, id := range []int{recent, trashed} {
		_, err := s.Get(ctx, id)
		assert.NoError(t, err)
	}
}
