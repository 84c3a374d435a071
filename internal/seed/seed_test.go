package seed_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/seed"
	"github.com/yamdb/backend/internal/service"
	"github.com/yamdb/backend/internal/testutil"
)

const fixtureYAML = `
categories:
  - {name: Films, slug: films}
  - {name: Books, slug: books}
genres:
  - {name: Drama, slug: drama}
  - {name: Comedy, slug: comedy}
titles:
  - name: Amelie
    year: 2001
    category: films
    genres: [drama, comedy]
  - name: Untitled
`

func TestLoadFixtures(t *testing.T) {
	f, err := seed.LoadFixtures(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	assert.Len(t, f.Categories, 2)
	assert.Len(t, f.Genres, 2)
	require.Len(t, f.Titles, 2)
	assert.Equal(t, 2001, *f.Titles[0].Year)
	assert.Nil(t, f.Titles[1].Year)

	_, err = seed.LoadFixtures(strings.NewReader("films: []"))
	assert.Error(t, err, "unknown keys are rejected")

	empty, err := seed.LoadFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Titles)
}

func TestApplyIsIdempotent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	ctx := context.Background()

	f, err := seed.LoadFixtures(strings.NewReader(fixtureYAML))
	require.NoError(t, err)

	s := seed.NewSeeder(testDB.DB)
	sum, err := s.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Created: 6}, sum)

	sum, err = s.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Skipped: 6}, sum)

	var title models.Title
	require.NoError(t, testDB.DB.Preload("Genres").Preload("Category").Where("name = ?", "Amelie").First(&title).Error)
	assert.Len(t, title.Genres, 2)
	require.NotNil(t, title.Category)
	assert.Equal(t, "films", title.Category.Slug)
}

func TestApplyValidatesTitles(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	f := &seed.Fixtures{Titles: []seed.TitleFixture{{Name: "Orphan", Genres: []string{"missing"}}}}
	_, err := seed.NewSeeder(testDB.DB).Apply(context.Background(), f)

	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestEnsureSuperuser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	ctx := context.Background()
	s := seed.NewSeeder(testDB.DB)

	user, created, err := s.EnsureSuperuser(ctx, "root", "root@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, user.IsSuperuser)
	assert.Equal(t, models.RoleAdmin, user.Role)

	again, created, err := s.EnsureSuperuser(ctx, "root", "root@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = s.EnsureSuperuser(ctx, "me", "me@example.com")
	assert.Error(t, err)

	_, _, err = s.EnsureSuperuser(ctx, strings.Repeat("a", 21), "long@example.com")
	assert.Error(t, err)
}
