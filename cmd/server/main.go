package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	bookshelf "github.com/goliatone/go-bookshelf"
)

func main() {
	cfg := loadConfig()

	sqldb, err := sql.Open(sqliteshim.ShimName, envOr("BOOKSHELF_DSN", "file:bookshelf.db?cache=shared&_pragma=foreign_keys(1)"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := createTables(ctx, db); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	repo := bookshelf.NewRepositoryManager(db)
	repo.MustValidate()

	provider := bookshelf.NewUserProvider(repo.Users())
	authenticator := bookshelf.NewAuthenticator(provider, cfg)
	search := bookshelf.NewBookSearch(repo.Books(), cfg)

	api := bookshelf.NewAPIController(
		bookshelf.WithRepository(repo),
		bookshelf.WithAuthenticator(authenticator),
		bookshelf.WithBookSearch(search),
		bookshelf.WithDebug(envOr("BOOKSHELF_DEBUG", "") != ""),
	)

	policy := bookshelf.NewRoutePolicy(bookshelf.RoleMember).
		Require(fiber.MethodDelete, "/api/books", bookshelf.RoleAdmin)

	guard := bookshelf.ProtectedRoute(cfg, authenticator.TokenService(), policy, api.AuthErrorHandler)

	app := fiber.New(fiber.Config{
		AppName:               "bookshelf",
		DisableStartupMessage: true,
	})

	api.RegisterRoutes(app, guard)

	addr := envOr("BOOKSHELF_ADDR", ":8978")
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen on %s: %v", addr, err)
		}
	}()
	log.Printf("bookshelf listening on %s", addr)

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func loadConfig() bookshelf.BaseConfig {
	key := os.Getenv("BOOKSHELF_SIGNING_KEY")
	if key == "" {
		log.Fatal("BOOKSHELF_SIGNING_KEY is required")
	}

	return bookshelf.BaseConfig{
		SigningKey:      key,
		TokenExpiration: envInt("BOOKSHELF_TOKEN_TTL_HOURS", 1),
		Issuer:          os.Getenv("BOOKSHELF_ISSUER"),
		MaxPageSize:     envInt("BOOKSHELF_MAX_PAGE_SIZE", 100),
	}
}

func createTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*bookshelf.User)(nil),
		(*bookshelf.Book)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
