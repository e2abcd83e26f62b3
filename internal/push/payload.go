package push

// Payload is the JSON body carried inside an encrypted push delivery.
// Every field is optional; the receiving side fills in defaults. Senders may
// include a badge field, which the desktop display has no slot for and the
// decoder ignores.
type Payload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url,omitempty"`
}
