package common

import (
	"os"
	"os/user"

	"github.com/google/uuid"
)

var clientNamespace = uuid.MustParse("6f1b8a52-3c0e-4d55-9a57-2d7f0c1e9b43")

// GetClientIdentifier returns a UUID that identifies this installation.
// It is derived from the hostname and the current user so that it stays
// stable across runs without being stored anywhere.
func GetClientIdentifier() uuid.UUID {

	hostname, err := os.Hostname()
	if err != nil {
		// Fallback to a random ephemeral UUID if the host cannot be named
		return uuid.New()
	}

	username := ""
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}

	return uuid.NewSHA1(clientNamespace, []byte(hostname+"/"+username))
}
