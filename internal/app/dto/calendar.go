package dto

// Calendar lists the days a guest cannot pick as check-in within the
// requested window. Days are "2006-01-02" strings in UTC.
type Calendar struct {
	ListingID   string   `json:"listingId"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	BlockedDays []string `json:"blockedDays"`
}

type DateBlocked struct {
	ListingID string `json:"listingId"`
	Date      string `json:"date"`
	Blocked   bool   `json:"blocked"`
}
