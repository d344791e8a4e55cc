package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// secureAlgorithms is the allow-list of asymmetric signing algorithms a
// session token may declare. Everything else is rejected up front, which
// shuts down alg:none and HMAC key-confusion tricks before any trust
// decision is made. Signature verification itself is delegated to the
// vendor introspection call.
var secureAlgorithms = map[string]struct{}{
	"RS256": {},
	"RS384": {},
	"RS512": {},
	"ES256": {},
	"ES384": {},
	"ES512": {},
}

const minTokenLength = 10

// CheckTokenStructure classifies a raw token string without any network
// call or cryptographic verification.
func CheckTokenStructure(token string) error {
	if len(strings.TrimSpace(token)) < minTokenLength {
		return errors.New("Invalid token format")
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return errors.New("Invalid token format: token must have three parts")
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[0], "="))
	if err != nil {
		return errors.New("Invalid token: header could not be parsed")
	}

	var header struct {
		Alg *string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return errors.New("Invalid token: header could not be parsed")
	}
	if header.Alg == nil || *header.Alg == "" {
		return errors.New("Invalid token: missing algorithm")
	}
	if _, ok := secureAlgorithms[*header.Alg]; !ok {
		return fmt.Errorf("Invalid token: insecure algorithm %q", *header.Alg)
	}
	return nil
}
