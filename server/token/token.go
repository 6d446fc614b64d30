// Package token handles creation and validation of the bearer JWTs issued by
// POST /tokens for use against the rest of the API.
package token

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/diceroll/server/dao"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "diceroll"

// Get extracts the bearer token from the Authorization header of req.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	tok := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return tok, nil
}

// Generate issues a new signed bearer token for k. The signing key is
// derived from secret and k's current secret hash, so regenerating an API
// key's secret (and thus its hash) invalidates every token issued for the
// old one.
func Generate(secret []byte, k dao.APIKey) (string, error) {
	claims := &jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
		"sub": k.Name,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, k))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// Validate parses and verifies tokStr, returning the dao.APIKey it names if
// the signature, issuer, and expiry all check out.
func Validate(ctx context.Context, tokStr string, secret []byte, keys dao.APIKeyRepository) (dao.APIKey, error) {
	var key dao.APIKey

	_, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		key, err = keys.GetByName(ctx, subj)
		if err != nil {
			if err == dao.ErrNotFound {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, key), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.APIKey{}, err
	}

	return key, nil
}

func signingKey(secret []byte, k dao.APIKey) []byte {
	var signKey []byte
	signKey = append(signKey, secret...)
	signKey = append(signKey, k.SecretHash...)
	return signKey
}
