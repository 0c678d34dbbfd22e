package domain

// ProfileKind selects between the two business entity types.
type ProfileKind string

const (
	ProfileRestaurant  ProfileKind = "restaurant"
	ProfileAssociation ProfileKind = "association"
)

// KindFor maps a user role to the profile it owns.
func KindFor(r Role) ProfileKind {
	if r == RoleAssociation {
		return ProfileAssociation
	}
	return ProfileRestaurant
}

// Profile is the restaurant or association record linked to a user.
// Specialty holds the cuisine type for restaurants and the beneficiary
// description for associations.
type Profile struct {
	ID          int64       `json:"id"`
	Kind        ProfileKind `json:"kind"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	PostalCode  string      `json:"postal_code"`
	Locality    string      `json:"locality"`
	Region      string      `json:"region"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email,omitempty"`
	Website     string      `json:"website,omitempty"`
	Description string      `json:"description,omitempty"`
	Specialty   string      `json:"specialty,omitempty"`
}
