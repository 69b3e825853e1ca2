// Package bookshelf is an authenticated book-catalog API: credential
// storage, stateless JWT issuance, role-gated HTTP middleware, and a
// deterministic catalog query engine.
//
// Accounts:
//   - Registration hashes passwords with bcrypt and performs the uniqueness
//     check and insert inside a single transaction, so duplicate usernames
//     surface as a conflict and concurrent registrations cannot both win.
//   - Login is enumeration safe. Unknown usernames and wrong passwords pay
//     the same bcrypt cost and return the same error.
//
// Tokens:
//   - TokenService signs HS256 JWTs carrying the subject, role, issue and
//     expiry claims. Validation maps every failure to exactly one of
//     expired, bad signature, or malformed.
//
// Access control:
//   - middleware/jwtware guards routes with a bearer token check plus a
//     RoutePolicy, an ordered method/path-prefix table that resolves the
//     minimum role per request. Handlers read the validated claims from the
//     request context via GetClaims.
//
// Catalog:
//   - BookSearch filters title, author, and normalized ISBN with
//     case-insensitive substring matching, orders matches by id ascending,
//     and paginates with clamped 1-based pages. Pages past the end are
//     empty, never an error, and TotalCount always reflects the full match
//     set.
package bookshelf
