package server

import "github.com/raysh454/ethicheck/internal/banner"

// ScanRequest asks the server to run the pipeline for one URL.
type ScanRequest struct {
	URL string `json:"url"`
}

// NavigateMessage is sent by websocket clients on every navigation, and
// with Type "dismiss" when the user closes the banner with ID.
type NavigateMessage struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Message types accepted on /ws/navigate. An empty type means navigate.
const (
	MessageNavigate = "navigate"
	MessageDismiss  = "dismiss"
)

// Banner event types pushed over /ws/navigate.
const (
	EventShow  = "show"
	EventClear = "clear"
	EventError = "error"
)

// BannerEvent is pushed to websocket clients when the banner changes.
type BannerEvent struct {
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	Banner *banner.Banner `json:"banner,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
