package timetable

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Contacts holds the optional contact fields of a teacher.
// A nil field means no data, which is distinct from a present empty value.
type Contacts struct {
	Phone    *string
	Email    *string
	Telegram *string
	Viber    *string
}

// IsEmpty reports whether no field is present
func (c Contacts) IsEmpty() bool {
	return c.Phone == nil && c.Email == nil && c.Telegram == nil && c.Viber == nil
}

var errMalformedContacts = errors.New("malformed contacts markup")

// ParseContacts parses contacts markup such as
//
//	<contacts><phone>123</phone><email>a@x.com</email><email>b@x.com</email></contacts>
//
// Only direct children of the root element are read. Emails are joined with ", "
// and the first phone, telegram or viber element wins. Blank or malformed input
// yields a Contacts value with every field absent.
func ParseContacts(raw string) Contacts {
	if strings.TrimSpace(raw) == "" {
		return Contacts{}
	}
	c, err := decodeContacts(raw)
	if err != nil {
		return Contacts{}
	}
	return c
}

func decodeContacts(raw string) (Contacts, error) {
	var (
		c        Contacts
		emails   []string
		depth    int
		rootSeen bool
		child    string
		text     strings.Builder
	)

	dec := xml.NewDecoder(strings.NewReader(raw))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Contacts{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch depth {
			case 0:
				if rootSeen {
					return Contacts{}, errMalformedContacts
				}
				rootSeen = true
			case 1:
				child = t.Name.Local
				text.Reset()
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 1 {
				value := text.String()
				switch child {
				case "phone":
					setOnce(&c.Phone, value)
				case "telegram":
					setOnce(&c.Telegram, value)
				case "viber":
					setOnce(&c.Viber, value)
				case "email":
					if value != "" {
						emails = append(emails, value)
					}
				}
				child = ""
			}
		case xml.CharData:
			switch depth {
			case 0:
				if strings.TrimSpace(string(t)) != "" {
					return Contacts{}, errMalformedContacts
				}
			case 2:
				text.Write(t)
			}
		}
	}

	if !rootSeen || depth != 0 {
		return Contacts{}, errMalformedContacts
	}
	if len(emails) > 0 {
		joined := strings.Join(emails, ", ")
		c.Email = &joined
	}
	return c, nil
}

func setOnce(field **string, value string) {
	if *field != nil {
		return
	}
	v := value
	*field = &v
}
