package core

import "errors"

// ErrCampaignNotFound is returned by storage backends for an unknown
// campaign name.
var ErrCampaignNotFound = errors.New("campaign not found")
