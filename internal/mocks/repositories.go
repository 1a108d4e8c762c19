package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/repository"
)

// NewMockRepositories wires in-memory repositories that share one lock and
// emulate the relational behaviour of the real store: tag joins, author
// slugs, unique constraints and delete cascades.
func NewMockRepositories() (*repository.Repositories, *MockArticleRepository, *MockTagRepository, *MockAuthorRepository) {
	mu := &sync.RWMutex{}
	tags := &MockTagRepository{mu: mu, Tags: make(map[int64]*models.Tag)}
	authors := &MockAuthorRepository{mu: mu, Authors: make(map[int64]*models.Author)}
	articles := &MockArticleRepository{
		mu:       mu,
		Articles: make(map[int64]*models.Article),
		tags:     tags,
		authors:  authors,
	}
	tags.articles = articles
	authors.articles = articles

	repos := &repository.Repositories{Article: articles, Tag: tags, Author: authors}
	return repos, articles, tags, authors
}

// MockArticleRepository is an in-memory implementation of ArticleRepository.
// Stored articles keep tag IDs only; names and author slugs are joined on read.
type MockArticleRepository struct {
	mu       *sync.RWMutex
	Articles map[int64]*models.Article
	tags     *MockTagRepository
	authors  *MockAuthorRepository

	// InsertError is returned by Create and Update when set
	InsertError error
	// ListError is returned by List when set
	ListError error
	ListCalls int
}

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

// Put stores an article directly, bypassing validation; tags are matched by ID
func (m *MockArticleRepository) Put(article *models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Articles[article.ID] = article.Clone()
}

func (m *MockArticleRepository) List(ctx context.Context, scope publication.Scope) ([]*models.Article, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Article, 0, len(m.Articles))
	for _, stored := range m.Articles {
		a := m.hydrate(stored)
		if scope.Matches(a) {
			out = append(out, a)
		}
	}
	// map iteration order is random; the real store has no defined order either
	return out, nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.Articles[id]; ok {
		return m.hydrate(a), nil
	}
	return nil, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.Articles {
		if a.Slug == slug {
			return m.hydrate(a), nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	a, err := m.GetBySlug(ctx, slug)
	return a != nil, err
}

func (m *MockArticleRepository) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.titleTaken(title, excludeID), nil
}

func (m *MockArticleRepository) titleTaken(title string, excludeID int64) bool {
	for _, a := range m.Articles {
		if a.ID != excludeID && a.Title == title {
			return true
		}
	}
	return false
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.titleTaken(article.Title, article.ID) {
		return &repository.ConflictError{Table: "articles", Constraint: "articles_title_key"}
	}
	for _, a := range m.Articles {
		if a.Slug == article.Slug {
			return &repository.ConflictError{Table: "articles", Constraint: "articles_slug_key"}
		}
	}
	m.Articles[article.ID] = article.Clone()
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Articles[article.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.titleTaken(article.Title, article.ID) {
		return &repository.ConflictError{Table: "articles", Constraint: "articles_title_key"}
	}

	updated := article.Clone()
	updated.Slug = stored.Slug
	updated.AuthorID = stored.AuthorID
	updated.CreatedAt = stored.CreatedAt
	m.Articles[article.ID] = updated
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Articles), nil
}

// hydrate joins current tag rows and the author slug onto a copy; caller holds the lock
func (m *MockArticleRepository) hydrate(stored *models.Article) *models.Article {
	a := stored.Clone()
	a.Tags = []models.Tag{}
	for _, t := range stored.Tags {
		if tag, ok := m.tags.Tags[t.ID]; ok {
			a.Tags = append(a.Tags, *tag)
		}
	}
	sort.Slice(a.Tags, func(i, j int) bool { return a.Tags[i].Name < a.Tags[j].Name })

	a.AuthorSlug = nil
	if a.AuthorID != nil {
		if au, ok := m.authors.Authors[*a.AuthorID]; ok {
			s := au.Slug
			a.AuthorSlug = &s
		}
	}
	return a
}

// MockTagRepository is an in-memory implementation of TagRepository
type MockTagRepository struct {
	mu       *sync.RWMutex
	Tags     map[int64]*models.Tag
	articles *MockArticleRepository

	InsertError error
}

var _ repository.TagRepository = (*MockTagRepository)(nil)

// Put stores a tag directly
func (m *MockTagRepository) Put(tag *models.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := *tag
	m.Tags[tag.ID] = &t
}

func (m *MockTagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockTagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.Tags[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (m *MockTagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.Tags {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockTagRepository) GetBySlugs(ctx context.Context, slugs []string) ([]*models.Tag, error) {
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}
	all, _ := m.List(ctx)
	out := make([]*models.Tag, 0, len(slugs))
	for _, t := range all {
		if want[t.Slug] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTagRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	t, err := m.GetBySlug(ctx, slug)
	return t != nil, err
}

func (m *MockTagRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nameTaken(name, excludeID), nil
}

func (m *MockTagRepository) nameTaken(name string, excludeID int64) bool {
	for _, t := range m.Tags {
		if t.ID != excludeID && t.Name == name {
			return true
		}
	}
	return false
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(tag.Name, tag.ID) {
		return &repository.ConflictError{Table: "tags", Constraint: "tags_name_key"}
	}
	t := *tag
	m.Tags[tag.ID] = &t
	return nil
}

func (m *MockTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Tags[tag.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.nameTaken(tag.Name, tag.ID) {
		return &repository.ConflictError{Table: "tags", Constraint: "tags_name_key"}
	}
	stored.Name = tag.Name
	return nil
}

// Delete removes the tag; hydrate drops dangling relations the way the join table cascade would
func (m *MockTagRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tags[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Tags, id)
	for _, a := range m.articles.Articles {
		kept := a.Tags[:0]
		for _, t := range a.Tags {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		a.Tags = kept
	}
	return nil
}

func (m *MockTagRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Tags), nil
}

// MockAuthorRepository is an in-memory implementation of AuthorRepository
type MockAuthorRepository struct {
	mu       *sync.RWMutex
	Authors  map[int64]*models.Author
	articles *MockArticleRepository

	InsertError error
}

var _ repository.AuthorRepository = (*MockAuthorRepository)(nil)

// Put stores an author directly
func (m *MockAuthorRepository) Put(author *models.Author) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := *author
	m.Authors[author.ID] = &a
}

func (m *MockAuthorRepository) List(ctx context.Context) ([]*models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Author, 0, len(m.Authors))
	for _, a := range m.Authors {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (m *MockAuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	return m.find(func(a *models.Author) bool { return a.ID == id }), nil
}

func (m *MockAuthorRepository) GetBySlug(ctx context.Context, slug string) (*models.Author, error) {
	return m.find(func(a *models.Author) bool { return a.Slug == slug }), nil
}

func (m *MockAuthorRepository) GetByUserName(ctx context.Context, userName string) (*models.Author, error) {
	return m.find(func(a *models.Author) bool { return a.UserName == userName }), nil
}

func (m *MockAuthorRepository) find(match func(*models.Author) bool) *models.Author {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.Authors {
		if match(a) {
			c := *a
			return &c
		}
	}
	return nil
}

func (m *MockAuthorRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	a, err := m.GetBySlug(ctx, slug)
	return a != nil, err
}

func (m *MockAuthorRepository) UserNameExists(ctx context.Context, userName string, excludeID int64) (bool, error) {
	a := m.find(func(a *models.Author) bool { return a.ID != excludeID && a.UserName == userName })
	return a != nil, nil
}

func (m *MockAuthorRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	a := m.find(func(a *models.Author) bool { return a.ID != excludeID && strings.EqualFold(a.Email, email) })
	return a != nil, nil
}

func (m *MockAuthorRepository) conflict(author *models.Author) error {
	for _, a := range m.Authors {
		if a.ID == author.ID {
			continue
		}
		if a.UserName == author.UserName {
			return &repository.ConflictError{Table: "authors", Constraint: "authors_user_name_key"}
		}
		if a.Email == author.Email {
			return &repository.ConflictError{Table: "authors", Constraint: "authors_email_key"}
		}
	}
	return nil
}

func (m *MockAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(author); err != nil {
		return err
	}
	a := *author
	m.Authors[author.ID] = &a
	return nil
}

func (m *MockAuthorRepository) Update(ctx context.Context, author *models.Author) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Authors[author.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := m.conflict(author); err != nil {
		return err
	}
	a := *author
	a.Slug = stored.Slug
	a.Joined = stored.Joined
	m.Authors[author.ID] = &a
	return nil
}

// Delete removes the author and cascades to their articles
func (m *MockAuthorRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Authors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Authors, id)
	for aid, a := range m.articles.Articles {
		if a.IsAuthoredBy(id) {
			delete(m.articles.Articles, aid)
		}
	}
	return nil
}

func (m *MockAuthorRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Authors), nil
}
