package listings

// Listing is a property record owned by the listings API. The bot only reads it.
type Listing struct {
	ID          string  `json:"id"`
	MongoID     string  `json:"_id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Type        string  `json:"type"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Area        float64 `json:"area"`
	Description string  `json:"description"`
	Agent       *Agent  `json:"agent,omitempty"`
}

// Agent is the listing's contact person.
type Agent struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// Key returns the listing identifier, preferring "id" over "_id".
func (l Listing) Key() string {
	if l.ID != "" {
		return l.ID
	}
	return l.MongoID
}

// Filter holds optional search parameters. Zero values are not sent.
type Filter struct {
	MinPrice int64  `json:"minPrice,omitempty"`
	MaxPrice int64  `json:"maxPrice,omitempty"`
	Location string `json:"location,omitempty"`
	Type     string `json:"type,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Skip     int    `json:"skip,omitempty"`
}

// Status distinguishes an empty result from a failed call. Both render
// the same text to users.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// SearchResult is the outcome of a list query.
type SearchResult struct {
	Status   Status
	Listings []Listing
	Err      error
}

// LookupResult is the outcome of a single listing lookup.
type LookupResult struct {
	Status  Status
	Listing *Listing
	Err     error
}

// Found reports whether a listing was returned.
func (r LookupResult) Found() bool {
	return r.Status == StatusOK && r.Listing != nil
}
