package game

import "errors"

var (
	ErrAgeNotVerified       = errors.New("age verification required")
	ErrAdultModeRequired    = errors.New("adult mode required")
	ErrEnhancedModeRequired = errors.New("enhanced mode required")

	ErrUnknownNPC      = errors.New("unknown npc")
	ErrUnknownItem     = errors.New("unknown item")
	ErrUnknownLocation = errors.New("unknown location")
	ErrLocationLocked  = errors.New("location is locked")

	ErrInvalidOption  = errors.New("no such dialog option")
	ErrOptionDisabled = errors.New("dialog option is disabled")

	ErrItemNotHere     = errors.New("item not available here")
	ErrAlreadyOwned    = errors.New("item already in inventory")
	ErrAdultItemLocked = errors.New("adult item requires adult mode")
	ErrNoSelection     = errors.New("no item selected")
	ErrNotOwned        = errors.New("item not in inventory")

	ErrProtectionNotSold = errors.New("protection not sold here")
	ErrProtectionFull    = errors.New("already at maximum protection")
	ErrInsufficientScore = errors.New("not enough money")
)
