package omsbridge

// Request is the envelope every adapter builds. It is the only thing that
// differs between the two backends for the same logical operation.
type Request struct {
	Method   string
	Endpoint string // relative to the base URL, or absolute
	Params   map[string]any
	Body     any // JSON encoded; []byte is sent as-is
	Headers  map[string]string

	// BaseURL is used by Client and APIClient. API takes it from the
	// credential provider.
	BaseURL string

	Cache bool // serve through the response cache (GET only)
	Queue bool // hand off to the queue hook instead of sending
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Data       []byte

	Cached bool
	Queued bool
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Credentials is what the transport needs from the session to make an
// authenticated call.
type Credentials struct {
	Token   string
	BaseURL string
}
