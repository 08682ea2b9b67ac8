package domain

// Bias labels curated by editors. The set is open; these are the ones the feed
// always reports counts for.
const (
	BiasLeft    = "Left"
	BiasCenter  = "Center"
	BiasRight   = "Right"
	BiasUnknown = "Unknown"
)

// AutoDiscoveredNote marks outlets created by ingestion rather than by an editor.
const AutoDiscoveredNote = "Auto-discovered via API"

// KnownBiasLabels lists the labels in display order.
var KnownBiasLabels = []string{BiasLeft, BiasCenter, BiasRight, BiasUnknown}

// Outlet is a named news source with an editorial-bias classification.
type Outlet struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	BiasLabel        string `json:"bias_label"`
	OwnershipDetails string `json:"ownership_details"`
}

// BiasCount is the number of articles published by outlets carrying a label.
type BiasCount struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
}
