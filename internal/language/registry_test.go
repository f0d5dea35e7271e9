package language

import (
	"context"
	"testing"

	"go_polyseo/internal/model"
	"go_polyseo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFallback(t *testing.T) {
	r := NewRegistry(testutil.OpenDB(t), "")
	code, err := r.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FallbackDefault, code)

	r = NewRegistry(testutil.OpenDB(t), "de")
	code, err = r.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "de", code)
}

func TestDefaultDerivation(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testutil.OpenDB(t), "")

	require.NoError(t, r.Save(ctx, &model.Language{Code: "fr", Enabled: true, SortOrder: 2}))
	require.NoError(t, r.Save(ctx, &model.Language{Code: "es", Enabled: true, SortOrder: 1}))

	code, err := r.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "es", code, "first enabled language by sort order")

	require.NoError(t, r.Save(ctx, &model.Language{Code: "fr", Enabled: true, IsDefault: true, SortOrder: 2}))
	code, err = r.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fr", code)

	require.NoError(t, r.Save(ctx, &model.Language{Code: "es", Enabled: true, IsDefault: true, SortOrder: 1}))
	all, err := r.All(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, l := range all {
		if l.IsDefault {
			defaults++
			assert.Equal(t, "es", l.Code)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default language")
}

func TestIsEnabledAndLandingPages(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testutil.OpenDB(t), "")

	require.NoError(t, r.Save(ctx, &model.Language{Code: "en", Enabled: true, IsDefault: true, LandingContentID: model.UPtr(7)}))
	require.NoError(t, r.Save(ctx, &model.Language{Code: "fr", Enabled: true, LandingContentID: model.UPtr(9)}))
	require.NoError(t, r.Save(ctx, &model.Language{Code: "de", Enabled: false, LandingContentID: model.UPtr(11)}))

	ok, err := r.IsEnabled(ctx, "fr")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsEnabled(ctx, "de")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsEnabled(ctx, "xx")
	require.NoError(t, err)
	assert.False(t, ok)

	landing, err := r.LandingPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{7: "en", 9: "fr"}, landing)
}

func TestSaveRejectsInvalidCode(t *testing.T) {
	r := NewRegistry(testutil.OpenDB(t), "")
	for _, code := range []string{"", "  ", "fr/../", "a-very-long-language-code"} {
		err := r.Save(context.Background(), &model.Language{Code: code})
		assert.ErrorIs(t, err, ErrInvalidCode, code)
	}
}
