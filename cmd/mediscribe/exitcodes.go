package main

// Exit codes
const (
	ExitSuccess          = 0 // Success
	ExitError            = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError      = 2 // Configuration error (bad config file, invalid values)
	ExitDataError        = 3 // Data error (unreadable note, malformed knowledge base)
	ExitModelUnavailable = 4 // Embedding or summarization model failed or timed out
)
