package instance

import "os"

// GetID identifies this process replica in log output. The outbox publisher
// and the notifications worker both run replicated, so WORKER_ID tells their
// log streams apart.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
