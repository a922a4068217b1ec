package instance

import "os"

var idEnvVars = []string{"VIEWER_INSTANCE_ID", "RAILWAY_REPLICA_ID", "DYNO", "HOSTNAME"}

// GetID returns the first replica identifier exposed by the platform, or "local".
func GetID() string {
	for _, key := range idEnvVars {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
