package dto

// SendMessageRequest carries a new message; at least one of Text and Image
// must be present. Image is a base64 data URI which the server replaces with
// a stored URL.
type SendMessageRequest struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}
