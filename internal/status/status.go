// internal/status/status.go
package status

// Bridge availability, published retained under <prefix>/status.
// The broker publishes Offline on our behalf through the last will.
const (
	Online  = "online"
	Offline = "offline"
)

// TopicSuffix is appended to the topic prefix for availability messages.
const TopicSuffix = "status"

// Topic returns the availability topic for prefix.
func Topic(prefix string) string {
	return prefix + "/" + TopicSuffix
}

// Encode returns the availability payload.
func Encode(online bool) []byte {
	if online {
		return []byte(Online)
	}
	return []byte(Offline)
}
