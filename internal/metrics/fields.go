package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrProvider = "provider"
	AttrResource = "resource"
	AttrStep     = "step"
	AttrQuery    = "query"
	AttrResult   = "result"
)
