// Package services defines the business logic for the recipe and
// preparation lifecycle. This file centralizes the expected business
// outcomes as error values so that callers branch on them explicitly
// instead of parsing result strings.
//
// These errors represent predictable conditions, not failures: handlers and
// the dialogue tracker translate each into a specific spoken or HTTP
// response. Unexpected errors (persistence failures) are returned raw and
// handled by the top-level recovery path.
package services

import "errors"

var (
	// ErrDuplicateRecipe indicates the user already has a recipe whose name
	// matches case-insensitively; the recipe list is left unchanged.
	ErrDuplicateRecipe = errors.New("recipe already exists")

	// ErrRecipeNotFound indicates no recipe with the requested name exists.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrAlreadyPreparing indicates the recipe already has an active
	// preparation; at most one may exist per recipe.
	ErrAlreadyPreparing = errors.New("recipe is already being prepared")

	// ErrNoActivePreparations indicates a completion was requested while the
	// active preparation list is empty.
	ErrNoActivePreparations = errors.New("no active preparations")

	// ErrPreparationNotFound indicates neither the preparation id nor the
	// name matched an active preparation.
	ErrPreparationNotFound = errors.New("preparation not found")

	// ErrInPreparation indicates a recipe cannot be deleted while an active
	// preparation references it.
	ErrInPreparation = errors.New("recipe is in preparation")
)
