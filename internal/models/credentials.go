package models

import "strings"

// Credentials is the connection record persisted by the settings store.
// Both fields are optional; an empty record selects the demo path at login.
type Credentials struct {
	ClientID string `json:"clientId"`
	APIKey   string `json:"apiKey"`
}

// IsEmpty reports whether neither field is set.
func (c Credentials) IsEmpty() bool {
	return strings.TrimSpace(c.ClientID) == "" && strings.TrimSpace(c.APIKey) == ""
}

// Masked returns a copy safe for display, with the API key obscured.
func (c Credentials) Masked() Credentials {
	out := c
	if n := len(c.APIKey); n > 0 {
		if n <= 4 {
			out.APIKey = strings.Repeat("*", n)
		} else {
			out.APIKey = c.APIKey[:4] + strings.Repeat("*", n-4)
		}
	}
	return out
}

// UserIdentity describes the signed-in user.
type UserIdentity struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarRef   string `json:"avatarRef,omitempty"` // empty when the user has no avatar
}

// Initial returns the first letter of the display name, used when there is no avatar.
func (u UserIdentity) Initial() string {
	for _, r := range u.DisplayName {
		return strings.ToUpper(string(r))
	}
	return ""
}
