package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogfolio/internal/model"
	"blogfolio/internal/repository"
)

type postFixture struct {
	svc       *PostService
	publisher *capturingPublisher
	author    *model.User
	other     *model.User
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)

	author := &model.User{Email: "author@x.com", PasswordHash: "h", FullName: "Author"}
	require.NoError(t, userRepo.Create(author))
	other := &model.User{Email: "other@x.com", PasswordHash: "h", FullName: "Other"}
	require.NoError(t, userRepo.Create(other))

	publisher := &capturingPublisher{}
	svc := NewPostService(repository.NewPostRepository(db), nil, publisher, zap.NewNop())
	return &postFixture{svc: svc, publisher: publisher, author: author, other: other}
}

func (f *postFixture) mustCreate(t *testing.T, title string, published bool) *model.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), CreatePostInput{
		AuthorID:    f.author.ID,
		Title:       title,
		Content:     "some content",
		IsPublished: published,
	})
	require.NoError(t, err)
	return post
}

func TestCreateDisambiguatesIdenticalTitles(t *testing.T) {
	f := newPostFixture(t)

	first := f.mustCreate(t, "Hello World", true)
	second := f.mustCreate(t, "Hello World", true)
	third := f.mustCreate(t, "Hello World", true)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-2", second.Slug)
	assert.Equal(t, "hello-world-3", third.Slug)
	assert.Contains(t, f.publisher.actions(), model.AuditPostCreated)
}

func TestCreateRejectsUnsluggableTitle(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), CreatePostInput{
		AuthorID: f.author.ID,
		Title:    "!!! ???",
		Content:  "body",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateWithoutIdentityIsForbidden(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), CreatePostInput{
		Title:   "No Author",
		Content: "body",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateRederivesSlugOnlyWhenTitleChanges(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.mustCreate(t, "My Post", true)
	require.Nil(t, post.UpdatedAt)

	// Same title: slug untouched, UpdatedAt stamped anyway.
	err := f.svc.Update(ctx, post.ID, f.author.ID, UpdatePostInput{
		Title:       "My Post",
		Content:     "edited content",
		IsPublished: true,
	})
	require.NoError(t, err)
	fetched, err := f.svc.GetBySlug(ctx, "my-post", "")
	require.NoError(t, err)
	assert.Equal(t, "edited content", fetched.Content)
	assert.NotNil(t, fetched.UpdatedAt)

	// New title: slug re-derived.
	err = f.svc.Update(ctx, post.ID, f.author.ID, UpdatePostInput{
		Title:       "Renamed Post",
		Content:     "edited content",
		IsPublished: true,
	})
	require.NoError(t, err)
	_, err = f.svc.GetBySlug(ctx, "my-post", "")
	assert.ErrorIs(t, err, ErrPostNotFound)
	renamed, err := f.svc.GetBySlug(ctx, "renamed-post", "")
	require.NoError(t, err)
	assert.Equal(t, post.ID, renamed.ID)
}

func TestUpdateTitleChangeKeepsOwnSlugWithoutSuffix(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.mustCreate(t, "Hello World", true)

	// Title text differs but slugs to the same value; the post must not
	// collide with its own row and end up as hello-world-2.
	err := f.svc.Update(ctx, post.ID, f.author.ID, UpdatePostInput{
		Title:       "Hello   World",
		Content:     "body",
		IsPublished: true,
	})
	require.NoError(t, err)
	got, err := f.svc.GetBySlug(ctx, "hello-world", "")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestUpdateSlugCollisionGetsSuffix(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	f.mustCreate(t, "Taken Title", true)
	post := f.mustCreate(t, "Other Title", true)

	err := f.svc.Update(ctx, post.ID, f.author.ID, UpdatePostInput{
		Title:       "Taken Title",
		Content:     "body",
		IsPublished: true,
	})
	require.NoError(t, err)
	got, err := f.svc.GetBySlug(ctx, "taken-title-2", "")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestMutationsByNonAuthor(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.mustCreate(t, "Owned", true)

	err := f.svc.Update(ctx, post.ID, f.other.ID, UpdatePostInput{
		Title: "Hijacked", Content: "x", IsPublished: true,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.svc.Delete(ctx, post.ID, f.other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Missing posts are NotFound before any ownership concern.
	err = f.svc.Update(ctx, 9999, f.other.ID, UpdatePostInput{
		Title: "X", Content: "x", IsPublished: true,
	})
	assert.ErrorIs(t, err, ErrPostNotFound)
	err = f.svc.Delete(ctx, 9999, f.author.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeleteRemovesPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.mustCreate(t, "Short Lived", true)
	require.NoError(t, f.svc.Delete(ctx, post.ID, f.author.ID))

	_, err := f.svc.GetBySlug(ctx, post.Slug, "")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Contains(t, f.publisher.actions(), model.AuditPostDeleted)
}

func TestUnpublishedPostVisibility(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	draft := f.mustCreate(t, "Secret Draft", false)

	got, err := f.svc.GetBySlug(ctx, draft.Slug, f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = f.svc.GetBySlug(ctx, draft.Slug, f.other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetBySlug(ctx, draft.Slug, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetBySlug(ctx, "no-such-slug", "")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListFiltersAndPagination(t *testing.T) {
	f := newPostFixture(t)

	f.mustCreate(t, "Go Tips", true)
	f.mustCreate(t, "Rust Tips", true)
	f.mustCreate(t, "Hidden Draft", false)

	published, err := f.svc.List(ListPostsInput{Page: 1, PageSize: 10, OnlyPublished: true})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	all, err := f.svc.List(ListPostsInput{Page: 1, PageSize: 10, OnlyPublished: false})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := f.svc.List(ListPostsInput{Page: 1, PageSize: 10, Query: "Rust", OnlyPublished: true})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "rust-tips", matched[0].Slug)

	byAuthor, err := f.svc.List(ListPostsInput{Page: 1, PageSize: 10, AuthorID: f.author.ID, OnlyPublished: true})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)
	for _, p := range byAuthor {
		require.NotNil(t, p.Author)
		assert.Equal(t, "author@x.com", p.Author.Email)
	}

	none, err := f.svc.List(ListPostsInput{Page: 1, PageSize: 10, AuthorID: f.other.ID, OnlyPublished: true})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.List(ListPostsInput{Page: 1, PageSize: 10, AuthorID: "not-a-uuid", OnlyPublished: true})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Out-of-range paging inputs fall back to defaults.
	fallback, err := f.svc.List(ListPostsInput{Page: -3, PageSize: 1000, OnlyPublished: false})
	require.NoError(t, err)
	assert.Len(t, fallback, 3)

	paged, err := f.svc.List(ListPostsInput{Page: 2, PageSize: 2, OnlyPublished: false})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestListOrdersByCreationDescending(t *testing.T) {
	f := newPostFixture(t)

	older := f.mustCreate(t, "Older", true)
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, f.svc.postRepo.Update(older))
	newer := f.mustCreate(t, "Newer", true)

	posts, err := f.svc.List(ListPostsInput{Page: 1, PageSize: 10, OnlyPublished: true})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
}
