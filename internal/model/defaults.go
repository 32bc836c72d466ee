package model

import "time"

// Shared defaults used by both the daemon and TUI binaries.
const (
	DefaultEndpoint        = "https://highfive.container.training/stats/data.json"
	DefaultTickInterval    = 2 * time.Second
	DefaultFetchThreshold  = 10 // ticks between fetches
	DefaultResumeThreshold = 5  // ticks between fetches after a resume
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultSortField       = SortByName
	DefaultSortDirection   = Descending
	DefaultAPIAddr         = "127.0.0.1:3000"
	DefaultStubAddr        = "127.0.0.1:8089"
)
