package sami

import "strings"

// Contact is a reachable peer address: "<ip-or-hostname><delimiter><port>".
type Contact struct {
	Address string
}

func NewContact(host string, port string, delimiter string) Contact {
	return Contact{Address: host + delimiter + port}
}

// ContactFromData returns a Contact from wire data, or false when the
// data is not admissible.
func ContactFromData(contactData map[string]any, delimiter string) (Contact, bool) {
	if !IsValidContact(contactData, delimiter) {
		return Contact{}, false
	}
	return Contact{Address: contactData["address"].(string)}, true
}

func (c Contact) HostPort(delimiter string) (string, string) {
	parts := strings.SplitN(c.Address, delimiter, 2)
	if len(parts) != 2 {
		return c.Address, ""
	}
	return parts[0], parts[1]
}

var exportSimpleContact = MustExportValidator("simple_contact_structure")

func (c Contact) ToDict() (map[string]any, error) {
	return exportSimpleContact(map[string]any{
		"address": c.Address,
	})
}
