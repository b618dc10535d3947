package model

// Counter pairs a total with the part of it considered active.
type Counter struct {
	Active int64 `json:"active"`
	Total  int64 `json:"total"`
}

// Statistics is the dashboard summary. Managers is nil for managers.
type Statistics struct {
	Clients  Counter  `json:"clients"`
	Managers *Counter `json:"managers,omitempty"`
}
