package request

// EventRequest is the request body for posting a conversation event
type EventRequest struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload,omitempty"`
}
