package domain

// Wedding is a wedding record stored in a tenant's data store.
type Wedding struct {
	ID           string   `json:"id"`
	BrideName    string   `json:"bride_name"`
	GroomName    string   `json:"groom_name"`
	WeddingDate  string   `json:"wedding_date"`
	Venue        string   `json:"venue"`
	Budget       *float64 `json:"budget,omitempty"`
	Organization string   `json:"organization"`
}

// WeddingUpdate carries the optional fields of a wedding update. Nil means
// unchanged.
type WeddingUpdate struct {
	BrideName   *string  `json:"bride_name"`
	GroomName   *string  `json:"groom_name"`
	WeddingDate *string  `json:"wedding_date"`
	Venue       *string  `json:"venue"`
	Budget      *float64 `json:"budget"`
}
