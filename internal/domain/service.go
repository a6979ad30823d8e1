package domain

// Service is a catalog entry. Fields the catalog does not declare are kept
// in Extra and stored alongside the declared ones. Price lives in Extra too:
// clients send it as a number or a string and it is stored as sent.
type Service struct {
	ID          string         `json:"_id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Img         string         `json:"img,omitempty"`
	Extra       map[string]any `json:"-"`
}

var serviceKeys = []string{"name", "title", "description", "img"}

type serviceFields Service

func (s Service) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(serviceFields(s), s.Extra)
}

func (s *Service) UnmarshalJSON(data []byte) error {
	var f serviceFields
	extra, err := decodeWithExtra(data, &f, serviceKeys...)
	if err != nil {
		return err
	}
	f.Extra = extra
	*s = Service(f)
	return nil
}
