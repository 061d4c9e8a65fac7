package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

const basicPrefix = "Basic "

// ExtractBasic parses the value of an Authorization header carrying HTTP
// Basic credentials. Every failure wraps domain.ErrInvalidCredentials.
func ExtractBasic(header string) (domain.Credentials, error) {
	if header == "" {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("the 'Authorization' header was missing"))
	}
	if !utf8.ValidString(header) {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("the 'Authorization' header was not a valid UTF-8 string"))
	}
	encoded, ok := strings.CutPrefix(header, basicPrefix)
	if !ok {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("the authorization scheme was not 'Basic'"))
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Credentials{}, domain.InvalidCredentials(fmt.Errorf("failed to base64-decode 'Basic' credentials: %w", err))
	}
	if !utf8.Valid(decoded) {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("the decoded credential string is not valid UTF-8"))
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if username == "" {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("a username must be provided in 'Basic' auth"))
	}
	if !found {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("a password must be provided in 'Basic' auth"))
	}

	return domain.Credentials{Username: username, Password: domain.NewSecret(password)}, nil
}

// BasicHeader builds the header value ExtractBasic accepts.
func BasicHeader(username, password string) string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
