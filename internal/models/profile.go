package models

// UserProfile is what the dialogue learns about the user during onboarding
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Age         *int   `json:"age,omitempty"`
}

// HasAge reports whether the age has been captured
func (p UserProfile) HasAge() bool {
	return p.Age != nil
}
