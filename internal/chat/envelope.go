package chat

// Envelope is the HTTP-style response returned to the function trigger.
type Envelope struct {
	IsBase64Encoded bool              `json:"isBase64Encoded"`
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
}

// OK is returned after a webhook was handled
func OK() Envelope {
	return Envelope{StatusCode: 200, Headers: map[string]string{}, Body: ""}
}

// Failed is returned for signature and reply failures
func Failed() Envelope {
	return Envelope{StatusCode: 500, Headers: map[string]string{}, Body: "Error"}
}

// EnvelopeFor maps the result of HandleWebhook to its response
func EnvelopeFor(err error) Envelope {
	if err != nil {
		return Failed()
	}
	return OK()
}
