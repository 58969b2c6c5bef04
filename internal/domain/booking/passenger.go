package booking

// AgeCategory buckets passengers for manifests and future fare rules.
// All categories currently pay the tour's effective price.
type AgeCategory string

const (
	AgeCategoryAdult  AgeCategory = "adult"
	AgeCategoryChild  AgeCategory = "child"
	AgeCategoryInfant AgeCategory = "infant"
)

// IsValid returns true if the age category is recognized.
func (a AgeCategory) IsValid() bool {
	switch a {
	case AgeCategoryAdult, AgeCategoryChild, AgeCategoryInfant:
		return true
	}
	return false
}

// Passenger is an immutable value object describing one traveller on
// the booking, with the price charged for their seat.
type Passenger struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	AgeCategory string `json:"age_category"`
	PriceCents  int64  `json:"price_cents"`
}

// ContactDetails holds the booking's point of contact.
type ContactDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
