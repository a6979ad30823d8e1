package domain

// Booking is a customer's request for a service. It belongs to the
// identity whose email it carries.
type Booking struct {
	ID           string         `json:"_id,omitempty"`
	Email        string         `json:"email"`
	CustomerName string         `json:"customerName,omitempty"`
	ServiceID    string         `json:"service_id,omitempty"`
	Service      string         `json:"service,omitempty"`
	Date         string         `json:"date,omitempty"`
	Img          string         `json:"img,omitempty"`
	Status       string         `json:"status,omitempty"`
	Extra        map[string]any `json:"-"`
}

var bookingKeys = []string{"email", "customerName", "service_id", "service", "date", "img", "status"}

type bookingFields Booking

func (b Booking) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(bookingFields(b), b.Extra)
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var f bookingFields
	extra, err := decodeWithExtra(data, &f, bookingKeys...)
	if err != nil {
		return err
	}
	f.Extra = extra
	*b = Booking(f)
	return nil
}

// StatusUpdate is the only mutation a booking accepts.
type StatusUpdate struct {
	Status string `json:"status"`
}

// BookingFilter selects bookings; an empty Email matches every booking.
type BookingFilter struct {
	Email string
}
