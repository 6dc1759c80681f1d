package models

// SerializedResponse is the outcome of a full-mode render: the sanitized
// markup of the rendered document plus the delivered status and any custom
// headers declared by the page itself.
type SerializedResponse struct {
	// Status is the HTTP status the caller should deliver. Always a valid
	// HTTP status integer; 304 from the network layer is already normalized
	// to 200 here.
	Status int

	// CustomHeaders carries at most one page-declared response header.
	// Insertion order is irrelevant.
	CustomHeaders map[string]string

	// Content is the serialized HTML snapshot.
	Content string
}

// PreviewResponse is the outcome of a preview-mode render. Title, Description
// and Img are nil when no extraction rule yielded a value; Domain is never
// empty — it falls back to the hostname of the requested URL.
type PreviewResponse struct {
	Status      int     `json:"status"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Domain      string  `json:"domain"`
	Img         *string `json:"img"`
}

// HealthResponse is the payload of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActivePages   int    `json:"active_pages"`
	MaxPages      int    `json:"max_pages"`
	BrowserAlive  bool   `json:"browser_alive"`
}

// ErrorResponse is the JSON error body returned by the API layer.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}
