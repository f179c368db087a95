// Package request defines the JSON request bodies the REST surface accepts
package request

// CreateRoomRequest is the body for POST /api/rooms. IsGuest defaults to
// true when omitted.
type CreateRoomRequest struct {
	HostName string `json:"hostName"`
	IsGuest  *bool  `json:"isGuest"`
}
