package serving

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenDuration is the validity of issued tokens
	TokenDuration = time.Hour * 24
	// TOKEN_ISSUER signs tokens as issued by this server
	TOKEN_ISSUER = "docfilters"
)

// createToken signs a token for login with the secret of the user.
// Login is the subject of the token.
func createToken(login string, userSecret string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    TOKEN_ISSUER,
		Subject:   login,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenDuration)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(userSecret))
}

// bearerToken returns the token of an Authorization: Bearer header, if any
func bearerToken(r *http.Request) (string, bool) {
	values := r.Header.Values("Authorization")
	if len(values) != 1 {
		return "", false
	}

	token, found := strings.CutPrefix(strings.TrimSpace(values[0]), "Bearer ")
	return token, found && len(token) != 0
}

// validateAuthentication checks the token of the request against the secret of its subject.
// It returns the login, true for a valid token, and why the token was refused otherwise.
// No token at all is not an error.
func validateAuthentication(wrapper ServiceParameters, r *http.Request) (string, bool, error) {
	if r == nil {
		return "", false, errors.New("empty request")
	} else if wrapper.Users == nil {
		return "", false, errors.New("no user store")
	}

	tokenValue, found := bearerToken(r)
	if !found {
		return "", false, nil
	}

	var login string
	// signing key is the secret of the subject
	keyFunc := func(token *jwt.Token) (any, error) {
		subject, err := token.Claims.GetSubject()
		if err != nil || len(subject) == 0 {
			return nil, errors.New("no user in token")
		}

		login = subject
		if secret, err := wrapper.Users.FindSecretForActiveUser(wrapper.Ctx, login); err != nil {
			return nil, err
		} else {
			return []byte(secret), nil
		}
	}

	token, err := jwt.ParseWithClaims(tokenValue, &jwt.RegisteredClaims{}, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TOKEN_ISSUER),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil && token.Valid:
		return login, true, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return login, false, errors.New("malformed token")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return login, false, errors.New("invalid signature")
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return login, false, errors.New("invalid token period")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return login, false, errors.New("token from another issuer")
	default:
		return login, false, err
	}
}
