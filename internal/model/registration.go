package model

import "strings"

// Registration is one completed tournament sign-up.
// UID and Level are kept as the participant typed them.
type Registration struct {
	Country  string `json:"Country"`
	Username string `json:"Username"`
	UID      string `json:"UID"`
	Level    string `json:"Level"`
}

// Validate checks that every field is present
func (r Registration) Validate() error {
	for _, v := range []string{r.Country, r.Username, r.UID, r.Level} {
		if strings.TrimSpace(v) == "" {
			return ErrIncompleteRegistration
		}
	}
	return nil
}

// Fields returns the record in column order (Country, Username, UID, Level)
func (r Registration) Fields() []string {
	return []string{r.Country, r.Username, r.UID, r.Level}
}

// RegistrationColumns is the header of the tabular store
var RegistrationColumns = []string{"Country", "Username", "UID", "Level"}
