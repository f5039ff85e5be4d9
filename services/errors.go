package services

import "errors"

// Planner error taxonomy. Controllers branch with errors.Is and map each kind
// to an HTTP code; nothing below is ever swallowed into a partial result.
var (
	// Fewer than MinWardrobeItems active items, user can fix by adding more.
	ErrInsufficientWardrobe = errors.New("not enough clothing items to generate an outfit")
	// The generator gave up: every valid combination is already suggested or disliked.
	ErrGenerationExhausted = errors.New("could not generate a new unique outfit with the available items")
	// The generator proposed item IDs outside the user's wardrobe. The whole
	// candidate is rejected, a partially filtered outfit could break category
	// composition.
	ErrInvalidCandidate = errors.New("generator proposed items outside the wardrobe")
	// The external generator exceeded its deadline, callers may retry.
	ErrGenerationTimeout = errors.New("outfit generation timed out")
	// Target status outside {suggested, worn, disliked}, or a disallowed transition.
	ErrInvalidStatus = errors.New("invalid status provided")
	// Missing outfit and foreign outfit are deliberately indistinguishable.
	ErrNotFoundOrForbidden = errors.New("outfit not found or you don't have permission to change it")
)
