package models

// ClientInfo describes the requesting device, derived from its User-Agent.
// It is attached to request logs and traces only; recommendations do not
// branch on it.
type ClientInfo struct {
	DeviceType string
	OS         string
	IsBot      bool
}
