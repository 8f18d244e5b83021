package logg

// Field names shared by every zap logger in the module.
const (
	Layer        = "layer"
	Operation    = "op"
	ResolutionID = "resolution_id"
	Label        = "label"
	Kind         = "kind"
	Index        = "index"
	Frame        = "frame"
	URL          = "url"
	NodeID       = "node_id"
)
