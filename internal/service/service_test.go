package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/config"
	"github.com/library-api/internal/mocks"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/service"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type counterIDs struct{ n atomic.Int64 }

func (c *counterIDs) NextID() int64 { return 1000 + c.n.Add(1) }

type fixture struct {
	svc      *service.Services
	articles *mocks.MockArticleRepository
	tags     *mocks.MockTagRepository
	authors  *mocks.MockAuthorRepository
	now      time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		Auth:        config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: 4, MinPasswordLength: 8},
		Publication: config.PublicationConfig{Ordering: "newest"},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, articles, tags, authors := mocks.NewMockRepositories()
	f := &fixture{articles: articles, tags: tags, authors: authors, now: testNow}

	svc, err := service.NewServices(repos, testConfig(), &counterIDs{}, func() time.Time { return f.now }, zerolog.Nop())
	require.NoError(t, err)
	f.svc = svc

	authors.Put(&models.Author{ID: 1, Slug: "alice", UserName: "alice", Email: "alice@example.com", IsActive: true})
	authors.Put(&models.Author{ID: 2, Slug: "bob", UserName: "bob", Email: "bob@example.com", IsActive: true})
	authors.Put(&models.Author{ID: 3, Slug: "editor", UserName: "editor", Email: "editor@example.com", IsActive: true, IsStaff: true})
	tags.Put(&models.Tag{ID: 10, Slug: "t", Name: "t"})
	tags.Put(&models.Tag{ID: 11, Slug: "go", Name: "go"})
	return f
}

func (f *fixture) identity(id int64) *models.Identity {
	a := f.authors.Authors[id]
	return a.Identity()
}

func (f *fixture) putArticle(id, authorID int64, title string, pubDate time.Time, tagIDs ...int64) {
	tags := make([]models.Tag, 0, len(tagIDs))
	for _, tid := range tagIDs {
		tags = append(tags, models.Tag{ID: tid})
	}
	aid := authorID
	f.articles.Put(&models.Article{
		ID: id, Slug: slugFor(title), Title: title, Content: "c",
		AuthorID: &aid, PubDate: pubDate, Tags: tags,
	})
}

func slugFor(title string) string {
	if title == "" {
		return "untitled"
	}
	return title
}

func slugsOf(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Slug)
	}
	return out
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	var ae *apperr.AppError
	require.True(t, errors.As(err, &ae), "expected AppError, got %v", err)
	assert.Equal(t, code, ae.Code, ae.Message)
}

func TestArticleService_PastAndFuture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "past", f.now.Add(-time.Hour), 10)
	f.putArticle(101, 1, "future", f.now.Add(time.Hour), 10)

	list, err := f.svc.Articles.List(ctx, publication.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"past"}, slugsOf(list))

	_, err = f.svc.Articles.Get(ctx, "future")
	assertCode(t, err, apperr.CodeNotFound)

	got, err := f.svc.Articles.Get(ctx, "past")
	require.NoError(t, err)
	assert.Equal(t, "past", got.Title)
}

func TestArticleService_NotFoundOpacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "future", f.now.Add(time.Hour), 10)

	_, errHidden := f.svc.Articles.Get(ctx, "future")
	_, errAbsent := f.svc.Articles.Get(ctx, "does-not-exist")
	_, errHiddenByID := f.svc.Articles.Get(ctx, "100")

	require.Error(t, errHidden)
	assert.Equal(t, errAbsent.Error(), errHidden.Error())
	assert.Equal(t, errAbsent.Error(), errHiddenByID.Error())
}

func TestArticleService_InclusiveBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "now", f.now, 10)
	f.putArticle(101, 1, "later", f.now.Add(time.Second), 10)

	list, err := f.svc.Articles.List(ctx, publication.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"now"}, slugsOf(list))
}

func TestArticleService_EmptyTitleHiddenEverywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "", f.now.Add(-time.Hour), 10)

	for _, scope := range []publication.Scope{publication.All(), publication.ByAuthor(1), publication.ByTag(10)} {
		list, err := f.svc.Articles.List(ctx, scope)
		require.NoError(t, err)
		assert.Empty(t, list, scope.String())
	}

	_, err := f.svc.Articles.Get(ctx, "100")
	assertCode(t, err, apperr.CodeNotFound)

	stored, _ := f.articles.GetByID(ctx, 100)
	assert.NotNil(t, stored)
}

func TestArticleService_CrossViewConsistency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "visible", f.now.Add(-time.Hour), 10)
	f.putArticle(101, 1, "future", f.now.Add(time.Hour), 10)
	f.putArticle(102, 1, "untagged", f.now.Add(-time.Hour))
	f.articles.Put(&models.Article{ID: 103, Slug: "empty-body", Title: "empty-body", AuthorID: int64Ptr(1),
		PubDate: f.now.Add(-time.Hour), Tags: []models.Tag{{ID: 10}}})

	all, err := f.svc.Articles.List(ctx, publication.All())
	require.NoError(t, err)
	byAuthor, err := f.svc.Articles.List(ctx, publication.ByAuthor(1))
	require.NoError(t, err)
	byTag, err := f.svc.Articles.List(ctx, publication.ByTag(10))
	require.NoError(t, err)

	for _, slug := range []string{"visible", "future", "untagged", "empty-body"} {
		stored, _ := f.articles.GetBySlug(ctx, slug)
		want := publication.Visible(stored, f.now)

		_, detailErr := f.svc.Articles.Get(ctx, slug)
		assert.Equal(t, want, detailErr == nil, "detail %s", slug)
		assert.Equal(t, want, contains(all, slug), "list %s", slug)
		assert.Equal(t, want, contains(byAuthor, slug), "author list %s", slug)
		if stored.HasTag(10) {
			assert.Equal(t, want, contains(byTag, slug), "tag list %s", slug)
		}
	}
}

func TestArticleService_ClockProgressionReveals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "scheduled", f.now.Add(time.Minute), 10)

	_, err := f.svc.Articles.Get(ctx, "scheduled")
	assertCode(t, err, apperr.CodeNotFound)

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.Articles.Get(ctx, "scheduled")
	assert.NoError(t, err)
}

func TestArticleService_ListOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "b-older", f.now.Add(-2*time.Hour), 10)
	f.putArticle(101, 1, "a-newer", f.now.Add(-time.Hour), 10)

	list, err := f.svc.Articles.List(ctx, publication.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-newer", "b-older"}, slugsOf(list))
}

func TestArticleService_TagRemovalHides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "past", f.now.Add(-time.Hour), 10)
	alice := f.identity(1)

	empty := []string{}
	_, err := f.svc.Articles.Update(ctx, alice, "past", &models.ArticlePatch{Tags: &empty})
	require.NoError(t, err)

	list, err := f.svc.Articles.List(ctx, publication.All())
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.Articles.Get(ctx, "past")
	assertCode(t, err, apperr.CodeNotFound)

	stored, _ := f.articles.GetByID(ctx, 100)
	require.NotNil(t, stored)
	assert.Equal(t, 0, stored.TagCount())
}

func TestArticleService_DeletingTagHides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "past", f.now.Add(-time.Hour), 10)

	require.NoError(t, f.svc.Tags.Delete(ctx, f.identity(3), "t"))

	list, err := f.svc.Articles.List(ctx, publication.All())
	require.NoError(t, err)
	assert.Empty(t, list)
	stored, _ := f.articles.GetByID(ctx, 100)
	assert.NotNil(t, stored)
}

func TestArticleService_CreateForcesAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	article, err := f.svc.Articles.Create(ctx, f.identity(1), &models.ArticleInput{
		Title:   "Hello World",
		Content: "body",
		Tags:    []string{"t", "http://localhost/api/tags/go/"},
		Author:  "http://localhost/api/authors/bob/",
	})
	require.NoError(t, err)

	require.NotNil(t, article.AuthorID)
	assert.Equal(t, int64(1), *article.AuthorID)
	require.NotNil(t, article.AuthorSlug)
	assert.Equal(t, "alice", *article.AuthorSlug)
	assert.Equal(t, "hello-world", article.Slug)
	assert.Equal(t, f.now, article.PubDate)
	assert.Equal(t, "go, t", article.TagsAsString())
}

func TestArticleService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "taken", f.now.Add(-time.Hour), 10)

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.svc.Articles.Create(ctx, nil, &models.ArticleInput{Title: "x", Content: "c", Tags: []string{"t"}})
		assertCode(t, err, apperr.CodeForbidden)
	})

	t.Run("unknown tag and duplicate title", func(t *testing.T) {
		_, err := f.svc.Articles.Create(ctx, f.identity(1), &models.ArticleInput{Title: "taken", Content: "c", Tags: []string{"nope"}})
		assertCode(t, err, apperr.CodeBadRequest)
		ae := apperr.From(err)
		assert.Contains(t, ae.Fields, "tags")
		assert.Contains(t, ae.Fields, "title")
	})

	count, _ := f.articles.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestArticleService_CreateFutureIsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	later := f.now.Add(time.Hour)

	created, err := f.svc.Articles.Create(ctx, f.identity(1), &models.ArticleInput{
		Title: "Soon", Content: "c", Tags: []string{"t"}, PubDate: &later,
	})
	require.NoError(t, err)

	_, err = f.svc.Articles.Get(ctx, created.Slug)
	assertCode(t, err, apperr.CodeNotFound)
}

func TestArticleService_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "mine", f.now.Add(-time.Hour), 10)
	f.putArticle(101, 1, "draft", f.now.Add(time.Hour), 10)
	before, _ := f.articles.GetByID(ctx, 100)
	newTitle := "hijacked"

	tests := []struct {
		name   string
		caller *models.Identity
		ref    string
		code   int
	}{
		{"other author on visible", f.identity(2), "mine", apperr.CodeForbidden},
		{"anonymous on visible", nil, "mine", apperr.CodeForbidden},
		{"staff on visible", f.identity(3), "mine", apperr.CodeForbidden},
		{"other author on hidden", f.identity(2), "draft", apperr.CodeNotFound},
		{"anonymous on hidden", nil, "draft", apperr.CodeNotFound},
		{"missing", f.identity(2), "missing", apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Articles.Update(ctx, tt.caller, tt.ref, &models.ArticlePatch{Title: &newTitle})
			assertCode(t, err, tt.code)
			assertCode(t, f.svc.Articles.Delete(ctx, tt.caller, tt.ref), tt.code)
		})
	}

	after, _ := f.articles.GetByID(ctx, 100)
	assert.Equal(t, before, after)
}

func TestArticleService_OwnerEditsAndDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "mine", f.now.Add(-time.Hour), 10)
	f.putArticle(101, 1, "draft", f.now.Add(time.Hour), 10)
	alice := f.identity(1)
	title := "renamed"

	updated, err := f.svc.Articles.Update(ctx, alice, "mine", &models.ArticlePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "mine", updated.Slug, "slug is fixed at creation")

	require.NoError(t, f.svc.Articles.Delete(ctx, alice, "draft"))
	stored, _ := f.articles.GetByID(ctx, 101)
	assert.Nil(t, stored)
}

func TestArticleService_RejectedUpdateIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "mine", f.now.Add(-time.Hour), 10)
	before, _ := f.articles.GetByID(ctx, 100)

	content := "new content"
	tags := []string{"missing-tag"}
	_, err := f.svc.Articles.Update(ctx, f.identity(1), "mine", &models.ArticlePatch{Content: &content, Tags: &tags})
	assertCode(t, err, apperr.CodeBadRequest)

	after, _ := f.articles.GetByID(ctx, 100)
	assert.Equal(t, before, after)
}

func TestArticleService_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.articles.ListError = errors.New("connection refused")

	_, err := f.svc.Articles.List(context.Background(), publication.All())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternalError, apperr.From(err).Code)
}

func TestTagService_StaffOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Tags.Create(ctx, f.identity(1), &models.TagInput{Name: "rust"})
	assertCode(t, err, apperr.CodeForbidden)
	_, err = f.svc.Tags.Create(ctx, nil, &models.TagInput{Name: "rust"})
	assertCode(t, err, apperr.CodeForbidden)

	tag, err := f.svc.Tags.Create(ctx, f.identity(3), &models.TagInput{Name: "Rust Lang"})
	require.NoError(t, err)
	assert.Equal(t, "rust-lang", tag.Slug)

	_, err = f.svc.Tags.Create(ctx, f.identity(3), &models.TagInput{Name: "go"})
	assertCode(t, err, apperr.CodeBadRequest)

	renamed, err := f.svc.Tags.Update(ctx, f.identity(3), "rust-lang", &models.TagInput{Name: "Rust"})
	require.NoError(t, err)
	assert.Equal(t, "rust-lang", renamed.Slug)
	assert.Equal(t, "Rust", renamed.Name)

	assertCode(t, f.svc.Tags.Delete(ctx, f.identity(2), "rust-lang"), apperr.CodeForbidden)
}

func TestAuthorService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("succeeds anonymously", func(t *testing.T) {
		author, err := f.svc.Authors.Register(ctx, nil, &models.RegisterInput{
			UserName: "new_author", Email: "new_author@ex.com", Password: "woeiuhtg9823y",
		})
		require.NoError(t, err)
		assert.True(t, author.IsActive)
		assert.False(t, author.IsStaff)
		assert.NotEqual(t, "woeiuhtg9823y", author.PasswordHash)
	})

	t.Run("rejects authenticated caller", func(t *testing.T) {
		_, err := f.svc.Authors.Register(ctx, f.identity(1), &models.RegisterInput{
			UserName: "another", Email: "another@ex.com", Password: "woeiuhtg9823y",
		})
		assertCode(t, err, apperr.CodeForbidden)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := f.svc.Authors.Register(ctx, nil, &models.RegisterInput{
			UserName: "alice", Email: "ALICE@example.com", Password: "woeiuhtg9823y",
		})
		assertCode(t, err, apperr.CodeBadRequest)
		fields := apperr.From(err).Fields
		assert.Contains(t, fields, "user_name")
		assert.Contains(t, fields, "email")
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := f.svc.Authors.Register(ctx, nil, &models.RegisterInput{
			UserName: "bad_author", Email: "bad_author@ex.com", Password: "password",
		})
		assertCode(t, err, apperr.CodeBadRequest)
		assert.Contains(t, apperr.From(err).Fields, "password")
	})

	count, _ := f.authors.Count(ctx)
	assert.Equal(t, 4, count)
}

func TestAuthorService_SelfOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "mine", f.now.Add(-time.Hour), 10)
	email := "alice@new.example.com"

	_, err := f.svc.Authors.Update(ctx, f.identity(2), "alice", &models.AuthorPatch{Email: &email})
	assertCode(t, err, apperr.CodeForbidden)

	updated, err := f.svc.Authors.Update(ctx, f.identity(1), "alice", &models.AuthorPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)

	assertCode(t, f.svc.Authors.Delete(ctx, nil, "alice"), apperr.CodeForbidden)
	require.NoError(t, f.svc.Authors.Delete(ctx, f.identity(1), "alice"))

	count, _ := f.articles.Count(ctx)
	assert.Equal(t, 0, count)
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Authors.Register(ctx, nil, &models.RegisterInput{
		UserName: "carol", Email: "carol@ex.com", Password: "woeiuhtg9823y",
	})
	require.NoError(t, err)

	_, err = f.svc.Auth.Login(ctx, &models.LoginInput{UserName: "carol", Password: "wrong-password"})
	assertCode(t, err, apperr.CodeUnauthorized)

	token, err := f.svc.Auth.Login(ctx, &models.LoginInput{UserName: "carol", Password: "woeiuhtg9823y"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	who, err := f.svc.Auth.Authenticate(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, "carol", who.UserName)

	_, err = f.svc.Auth.Authenticate(ctx, "garbage")
	assertCode(t, err, apperr.CodeUnauthorized)

	require.NoError(t, f.svc.Authors.Delete(ctx, who, who.Slug))
	_, err = f.svc.Auth.Authenticate(ctx, token.Token)
	assertCode(t, err, apperr.CodeUnauthorized)
}

func TestStatsService_Counts(t *testing.T) {
	f := newFixture(t)
	f.putArticle(100, 1, "past", f.now.Add(-time.Hour), 10)
	f.putArticle(101, 1, "future", f.now.Add(time.Hour), 10)

	stats, err := f.svc.Stats.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.Stats{Articles: 2, VisibleArticles: 1, Tags: 2, Authors: 3}, stats)
}

func TestNewServices_InvalidOrdering(t *testing.T) {
	repos, _, _, _ := mocks.NewMockRepositories()
	cfg := testConfig()
	cfg.Publication.Ordering = "random"

	_, err := service.NewServices(repos, cfg, &counterIDs{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func contains(list []*models.Article, slug string) bool {
	for _, a := range list {
		if a.Slug == slug {
			return true
		}
	}
	return false
}

func int64Ptr(v int64) *int64 { return &v }

func TestAuthorize_MatchesWriteOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.putArticle(100, 1, "visible", f.now.Add(-time.Hour), 10)
	f.putArticle(101, 1, "hidden", f.now.Add(time.Hour), 10)
	alice, bob, editor := f.identity(1), f.identity(2), f.identity(3)

	assertCode(t, f.svc.Articles.AuthorizeCreate(nil), apperr.CodeForbidden)
	assert.NoError(t, f.svc.Articles.AuthorizeCreate(bob))

	assert.NoError(t, f.svc.Articles.AuthorizeWrite(ctx, alice, "hidden"))
	assertCode(t, f.svc.Articles.AuthorizeWrite(ctx, bob, "visible"), apperr.CodeForbidden)
	assertCode(t, f.svc.Articles.AuthorizeWrite(ctx, bob, "hidden"), apperr.CodeNotFound)
	assertCode(t, f.svc.Articles.AuthorizeWrite(ctx, nil, "missing"), apperr.CodeNotFound)

	assertCode(t, f.svc.Tags.AuthorizeWrite(bob), apperr.CodeForbidden)
	assert.NoError(t, f.svc.Tags.AuthorizeWrite(editor))

	assertCode(t, f.svc.Authors.AuthorizeRegister(alice), apperr.CodeForbidden)
	assert.NoError(t, f.svc.Authors.AuthorizeRegister(nil))
	assertCode(t, f.svc.Authors.AuthorizeWrite(ctx, bob, "alice"), apperr.CodeForbidden)
	assert.NoError(t, f.svc.Authors.AuthorizeWrite(ctx, alice, "alice"))

	// Authorizing never writes
	assert.Len(t, f.articles.Articles, 2)
}
