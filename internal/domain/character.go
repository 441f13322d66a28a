package domain

// NotAvailable is shown in place of an origin or location the catalog did not provide.
const NotAvailable = "N/A"

// Place is a named location reference attached to a character
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Character struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`  // Alive, Dead, unknown
	Species  string `json:"species"` // Human, Alien, ...
	Gender   string `json:"gender"`
	Origin   *Place `json:"origin,omitempty"`
	Location *Place `json:"location,omitempty"` // Last known location
	Image    string `json:"image"`
}

func (c Character) OriginName() string {
	return placeName(c.Origin)
}

func (c Character) LocationName() string {
	return placeName(c.Location)
}

func placeName(p *Place) string {
	if p == nil || p.Name == "" {
		return NotAvailable
	}
	return p.Name
}
