package types

// LoaderStrategy selects how the catalog accumulates package metadata.
type LoaderStrategy string

const (
	// LoaderStrategyProgressive walks upstream pages incrementally and
	// refines the accumulated set locally.
	LoaderStrategyProgressive LoaderStrategy = "progressive"

	// LoaderStrategyNameFirst fetches the distinct name list once and
	// batches metadata lookups for the visible page only.
	LoaderStrategyNameFirst LoaderStrategy = "name-first"
)
