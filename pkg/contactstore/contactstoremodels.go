// FILE: pkg/contactstore/models.go

package contactstore

// AuthStatus describes the contact store permission state for this process.
type AuthStatus string

const (
	AuthStatusNotDetermined AuthStatus = "not_determined"
	AuthStatusRestricted    AuthStatus = "restricted"
	AuthStatusDenied        AuthStatus = "denied"
	AuthStatusAuthorized    AuthStatus = "authorized"
	// AuthStatusUnknown covers any state the backend reports that is not listed above.
	AuthStatusUnknown AuthStatus = "unknown"
)

// Key selects which contact fields a fetch should populate.
type Key string

const (
	KeyGivenName  Key = "givenName"
	KeyFamilyName Key = "familyName"
	KeyEmails     Key = "emailAddresses"
	KeyPhones     Key = "phoneNumbers"
	KeyURLs       Key = "urlAddresses"
)

// LabeledValue is a labeled string value (email, phone, url).
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NativeContact is the store's own representation of a contact.
type NativeContact struct {
	GivenName  string         `json:"givenName"`
	FamilyName string         `json:"familyName"`
	Emails     []LabeledValue `json:"emails,omitempty"`
	Phones     []LabeledValue `json:"phones,omitempty"`
	URLs       []LabeledValue `json:"urls,omitempty"`
}

// Container is a top-level partition of the store (an account or local book).
type Container struct {
	ID   string
	Name string
}

// Handle references a contact that already exists in the store. Handles are
// only produced by FetchContacts; Fields holds whichever keys were requested.
type Handle struct {
	ID          string
	ContainerID string
	Fields      NativeContact
}

// Project copies only the requested keys of c.
func Project(c NativeContact, keys []Key) NativeContact {
	var out NativeContact
	for _, k := range keys {
		switch k {
		case KeyGivenName:
			out.GivenName = c.GivenName
		case KeyFamilyName:
			out.FamilyName = c.FamilyName
		case KeyEmails:
			out.Emails = append([]LabeledValue(nil), c.Emails...)
		case KeyPhones:
			out.Phones = append([]LabeledValue(nil), c.Phones...)
		case KeyURLs:
			out.URLs = append([]LabeledValue(nil), c.URLs...)
		}
	}
	return out
}
