package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed token")

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// ExpiryOf decodes the payload segment of a three-part token and returns its
// "exp" claim. ok is false when the claim is absent, null or zero, meaning
// the token never expires. Fractional values are truncated to whole seconds.
// The signature is not verified.
func ExpiryOf(token string) (exp time.Time, ok bool, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false, ErrMalformedToken
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims["exp"] == nil {
		return time.Time{}, false, nil
	}

	nd, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if nd == nil || nd.Unix() == 0 && nd.Nanosecond() == 0 {
		return time.Time{}, false, nil
	}
	return nd.Time, true, nil
}
