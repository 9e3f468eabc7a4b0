package instance

import "os"

// GetID identifies this worker process in logs. PETCO_INSTANCE_ID wins, then
// the hostname.
func GetID() string {
	if id := os.Getenv("PETCO_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
