package parts

import "errors"

var (
	// ErrNoMount is returned for an operation on a mount index the unit does
	// not have, or for a placeholder without a mount reference.
	ErrNoMount = errors.New("no such mount")
	// ErrSlotEmpty is returned when neither a part nor a placeholder occupies
	// the slot.
	ErrSlotEmpty = errors.New("slot is empty")
	// ErrSlotOccupied is returned when installing into an occupied slot.
	ErrSlotOccupied = errors.New("slot is occupied")
	// ErrNotBin is returned for ammunition operations on other parts.
	ErrNotBin = errors.New("part is not an ammunition bin")
	// ErrIncompatibleMunition is returned when a munition swap changes
	// family or rack size.
	ErrIncompatibleMunition = errors.New("munition is not compatible")
	// ErrNoPartner is returned when a capacity split has no partner bin.
	ErrNoPartner = errors.New("bin has no partner")
	// ErrNoReplacement is returned when no spare satisfies a placeholder.
	ErrNoReplacement = errors.New("no acceptable replacement available")
	// ErrAlreadyChecked is returned when a replacement search for the same
	// type already failed today.
	ErrAlreadyChecked = errors.New("replacement already searched for today")
	// ErrBlocked is returned by Fix when CheckFixable reports a reason.
	ErrBlocked = errors.New("repair blocked")
	// ErrNotRemovable is returned when removing a part that models capacity
	// rather than a discrete unit.
	ErrNotRemovable = errors.New("part cannot be removed")
	// ErrInvalidCapacity is returned for a capacity outside the allowed range.
	ErrInvalidCapacity = errors.New("invalid capacity")
)
