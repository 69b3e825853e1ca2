package bookshelf_test

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	bookshelf "github.com/goliatone/go-bookshelf"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockLogger implements bookshelf.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentity implements bookshelf.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockIdentityProvider implements bookshelf.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, username, password string) (bookshelf.Identity, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bookshelf.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByUsername(ctx context.Context, username string) (bookshelf.Identity, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bookshelf.Identity), args.Error(1)
}

// fakeUsers is an in-memory account store. The embedded repository interface
// is nil; only the methods the code under test touches are implemented.
type fakeUsers struct {
	repository.Repository[*bookshelf.User]

	mu     sync.Mutex
	byName map[string]*bookshelf.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*bookshelf.User{}}
}

func (f *fakeUsers) CreateTx(ctx context.Context, tx bun.IDB, record *bookshelf.User, criteria ...repository.InsertCriteria) (*bookshelf.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byName[record.Username]; ok {
		return nil, errors.New("UNIQUE constraint failed: users.username")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	stored := *record
	f.byName[record.Username] = &stored
	return record, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string, criteria ...repository.SelectCriteria) (*bookshelf.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.byName[username]
	if !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"username": username})
	}

	found := *user
	return &found, nil
}

func (f *fakeUsers) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string, criteria ...repository.SelectCriteria) (*bookshelf.User, error) {
	return f.GetByUsername(ctx, username, criteria...)
}

// fakeBooks is an in-memory catalog store with monotonically increasing ids
type fakeBooks struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*bookshelf.Book
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{nextID: 1, byID: map[int64]*bookshelf.Book{}}
}

func (f *fakeBooks) FindByID(ctx context.Context, id int64) (*bookshelf.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	book, ok := f.byID[id]
	if !ok {
		return nil, bookshelf.ErrBookNotFound
	}

	found := *book
	return &found, nil
}

func (f *fakeBooks) FindAll(ctx context.Context) ([]bookshelf.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	books := make([]bookshelf.Book, 0, len(f.byID))
	for _, b := range f.byID {
		books = append(books, *b)
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})

	return books, nil
}

func (f *fakeBooks) Insert(ctx context.Context, book *bookshelf.Book) (*bookshelf.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	book.ID = f.nextID
	f.nextID++

	stored := *book
	f.byID[book.ID] = &stored
	return book, nil
}

func (f *fakeBooks) Update(ctx context.Context, book *bookshelf.Book) (*bookshelf.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[book.ID]; !ok {
		return nil, bookshelf.ErrBookNotFound
	}

	stored := *book
	f.byID[book.ID] = &stored
	return book, nil
}

func (f *fakeBooks) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return bookshelf.ErrBookNotFound
	}

	delete(f.byID, id)
	return nil
}

// fakeRepoManager bundles the in-memory stores behind RepositoryManager
type fakeRepoManager struct {
	users *fakeUsers
	books *fakeBooks
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users: newFakeUsers(),
		books: newFakeBooks(),
	}
}

func (f *fakeRepoManager) Users() bookshelf.Users {
	return f.users
}

func (f *fakeRepoManager) Books() bookshelf.Books {
	return f.books
}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func (f *fakeRepoManager) Validate() error {
	return nil
}

func (f *fakeRepoManager) MustValidate() {}

var (
	_ bookshelf.RepositoryManager = (*fakeRepoManager)(nil)
	_ bookshelf.Books             = (*fakeBooks)(nil)
)
