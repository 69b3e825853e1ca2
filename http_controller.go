package bookshelf

import (
	"fmt"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/goliatone/go-bookshelf/middleware/jwtware"
)

// APIController wires the access-control core and the query engine to the
// JSON endpoints.
type APIController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auth   Authenticator
	Search *BookSearch
}

type APIControllerOption func(*APIController) *APIController

// WithRepository sets the repository manager
func WithRepository(repo RepositoryManager) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Repo = repo
		return c
	}
}

// WithAuthenticator sets the authenticator used by login
func WithAuthenticator(auth Authenticator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Auth = auth
		return c
	}
}

// WithBookSearch sets the query engine
func WithBookSearch(search *BookSearch) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Search = search
		return c
	}
}

// WithControllerLogger sets the logger
func WithControllerLogger(logger Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithDebug toggles payload dumps on the debug logger
func WithDebug(debug bool) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Debug = debug
		return c
	}
}

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in api controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in api controller...")
	}

	if c.Search == nil {
		panic("Missing BookSearch in api controller...")
	}

	return c
}

// RegisterRoutes mounts the public and guarded endpoints. guard is the
// access-control middleware; registration and login bypass it entirely.
func (a *APIController) RegisterRoutes(app fiber.Router, guard fiber.Handler) {
	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", a.RegisterPost)
	users.Post("/login", a.LoginPost)

	books := api.Group("/books", guard)
	books.Get("/search", a.BookSearchGet)
	books.Post("/", a.BookCreate)
	books.Get("/", a.BookList)
	books.Get("/:id", a.BookShow)
	books.Put("/:id", a.BookUpdate)
	books.Delete("/:id", a.BookDelete)
}

// AuthErrorHandler translates middleware failures into the uniform error
// shape. Reasons stay coarse on purpose: 401 for anything token related,
// 403 for role rejections.
func (a *APIController) AuthErrorHandler(c *fiber.Ctx, err error) error {
	switch {
	case goerrors.Is(err, jwtware.ErrRoleInsufficient):
		return a.respondError(c, ErrInsufficientRole)
	case goerrors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return a.respondError(c, ErrTokenMissing)
	default:
		return a.respondError(c, err)
	}
}

func (a *APIController) respondError(c *fiber.Ctx, err error) error {
	status, body := ErrorResponse(err)
	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed %s: %v", c.Path(), err)
	}
	return c.Status(status).JSON(body)
}

// RegisterRequest payload
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if a.Debug {
		a.Logger.Debug("register payload: %s", print.MaybePrettyJSON(RegisterRequest{Username: payload.Username}))
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	user, err := registerUser.Execute(c.UserContext(), RegisterUserMessage{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("register user: %v", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": user.ID,
	})
}

func (a *APIController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload"))
	}

	token, err := a.Auth.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Info("login rejected for %s", payload.Username)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}

var isbnPattern = regexp.MustCompile(`^[0-9]{3,12}[0-9X]$`)

// BookPayload is the create/update body
type BookPayload struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedDate string `json:"published_date"`
}

// Validate will run validation rules
func (r BookPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ISBN, validation.Required, validation.By(validateISBN)),
		validation.Field(&r.PublishedDate, validation.Required, validation.Date("2006-01-02")),
	)
}

func validateISBN(value any) error {
	s, _ := value.(string)
	if !isbnPattern.MatchString(NormalizeISBN(s)) {
		return fmt.Errorf("must be a valid ISBN")
	}
	return nil
}

func (a *APIController) BookCreate(c *fiber.Ctx) error {
	payload := new(BookPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid book payload"))
	}

	book := &Book{
		Title:         payload.Title,
		Author:        payload.Author,
		ISBN:          NormalizeISBN(payload.ISBN),
		PublishedDate: payload.PublishedDate,
	}

	record, err := a.Repo.Books().Insert(c.UserContext(), book)
	if err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create book"))
	}

	if a.Debug {
		a.Logger.Debug("created book: %s", print.MaybePrettyJSON(record))
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (a *APIController) BookList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", DefaultPageSize)

	result, err := a.Search.Search(c.UserContext(), "", page, size)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (a *APIController) BookShow(c *fiber.Ctx) error {
	id, err := parseBookID(c)
	if err != nil {
		return a.respondError(c, err)
	}

	book, err := a.Repo.Books().FindByID(c.UserContext(), id)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(book)
}

func (a *APIController) BookUpdate(c *fiber.Ctx) error {
	id, err := parseBookID(c)
	if err != nil {
		return a.respondError(c, err)
	}

	payload := new(BookPayload)
	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid book payload"))
	}

	book := &Book{
		ID:            id,
		Title:         payload.Title,
		Author:        payload.Author,
		ISBN:          NormalizeISBN(payload.ISBN),
		PublishedDate: payload.PublishedDate,
	}

	record, err := a.Repo.Books().Update(c.UserContext(), book)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(record)
}

func (a *APIController) BookDelete(c *fiber.Ctx) error {
	id, err := parseBookID(c)
	if err != nil {
		return a.respondError(c, err)
	}

	if err := a.Repo.Books().Delete(c.UserContext(), id); err != nil {
		return a.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *APIController) BookSearchGet(c *fiber.Ctx) error {
	query := c.Query("query")
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", DefaultPageSize)

	result, err := a.Search.Search(c.UserContext(), query, page, size)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func parseBookID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, goerrors.New("book id must be an integer", goerrors.CategoryBadInput)
	}
	return id, nil
}
