package types

// WSTestResult is the response for a notification channel test.
type WSTestResult struct {
	Type     string `json:"type"`      // "test_result"
	TestType string `json:"test_type"` // "webhook" or "log"
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// WSStatusUpdate carries a status surface state pushed to connected clients.
type WSStatusUpdate struct {
	Type  string `json:"type"` // "status"
	Text  string `json:"text"`
	Class string `json:"class"` // "ok", "warn", "error", or ""
	Path  string `json:"path"`  // current path input value ("" = cleared)
}
