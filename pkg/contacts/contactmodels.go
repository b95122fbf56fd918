// FILE: pkg/contacts/models.go

package contacts

import (
	"fmt"
	"strconv"

	"github.com/illmade-knight/contact-sync/pkg/contactstore"
)

// Labels and names used when contacts are written to a store.
const (
	GroupName  = "Contact-Testing"
	URLLabel   = "Test"
	EmailLabel = "work"
	PhoneLabel = "home"
)

// Contact is one synchronizable person. It is a comparable value type:
// two contacts are equal when every field is equal.
type Contact struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber int    `json:"phoneNumber"`
	ID          string `json:"id"`
}

// URL returns the value written under URLLabel. It is the contact's ID.
func (c Contact) URL() string {
	return c.ID
}

func (c Contact) FullName() string {
	return fmt.Sprintf("%s %s", c.FirstName, c.LastName)
}

func (c Contact) String() string {
	return fmt.Sprintf("Name: %s %s\nEmail: %s\nPhone: %d\nURL: %s", c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.URL())
}

// ToNative maps c onto the store representation: given and family name,
// one work email, one home phone and one Test URL carrying the ID.
func ToNative(c Contact) contactstore.NativeContact {
	return contactstore.NativeContact{
		GivenName:  c.FirstName,
		FamilyName: c.LastName,
		Emails:     []contactstore.LabeledValue{{Label: EmailLabel, Value: c.Email}},
		Phones:     []contactstore.LabeledValue{{Label: PhoneLabel, Value: strconv.Itoa(c.PhoneNumber)}},
		URLs:       []contactstore.LabeledValue{{Label: URLLabel, Value: c.URL()}},
	}
}
