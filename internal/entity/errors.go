package entity

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when an operation requires a logged-in
	// user and none is bound to the session.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the acting user lacks the admin flag.
	ErrForbidden = errors.New("forbidden")

	// ErrUsernameTaken is returned on registration with a duplicate username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRating is returned when a review rating falls outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrEmptyCart is returned when a checkout is started with nothing to buy.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidQuantity is returned when a direct purchase requests less
	// than one unit.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrInvalidInput is wrapped by validation failures on user-supplied
	// fields (registration, admin product CRUD).
	ErrInvalidInput = errors.New("invalid input")
)
