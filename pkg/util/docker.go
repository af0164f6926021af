package util

import "os"

var dockerEnvFile = "/.dockerenv"

// IsRunningInDocker reports whether the process was started inside a docker container
func IsRunningInDocker() bool {
	_, err := os.Stat(dockerEnvFile)
	return err == nil
}
