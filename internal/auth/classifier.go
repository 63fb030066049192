package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"authproxy/internal/config"
)

// ErrVerifierRejected is returned by Classify when a bearer token fails
// verification and the deny failure mode is configured.
var ErrVerifierRejected = errors.New("identity token rejected")

// Classification is the outcome of inspecting a request's credential
// material. Claims is non-nil only in identity-bearer mode.
type Classification struct {
	Mode   TrustMode
	Claims *Claims
}

// Classifier derives exactly one TrustMode per request from the session
// cookie and the Authorization header, in that order. The only I/O it
// performs is the verifier call for unrecognized bearer tokens.
type Classifier struct {
	sessionCookie string
	serviceToken  string
	verifier      Verifier
	onFailure     config.VerifierFailureMode
}

func NewClassifier(sessionCookie, serviceToken string, verifier Verifier, onFailure config.VerifierFailureMode) *Classifier {
	return &Classifier{
		sessionCookie: sessionCookie,
		serviceToken:  serviceToken,
		verifier:      verifier,
		onFailure:     onFailure,
	}
}

// Classify inspects the request's cookies and Authorization header.
// The session cookie short-circuits everything else: an interactive CMS
// session is already authenticated by the CMS.
func (cl *Classifier) Classify(ctx context.Context, r *http.Request) (Classification, error) {
	if _, err := r.Cookie(cl.sessionCookie); err == nil {
		return Classification{Mode: TrustCookiePassthrough}, nil
	}

	token := ExtractBearerToken(r.Header.Get(headerAuthorization))
	if token == "" {
		return Classification{Mode: TrustAnonymous}, nil
	}

	if token == cl.serviceToken {
		return Classification{Mode: TrustServiceBypass}, nil
	}

	claims, err := cl.verifier.Verify(ctx, token)
	if err != nil {
		if cl.onFailure == config.VerifierFailureDeny {
			return Classification{}, fmt.Errorf(msgVerifierRejectedFmt, ErrVerifierRejected, err)
		}
		return Classification{Mode: TrustOpaqueBypass}, nil
	}

	return Classification{Mode: TrustIdentityBearer, Claims: claims}, nil
}

// ExtractBearerToken returns the token from an "Authorization: Bearer x"
// header value, or "" when the header is absent or not a bearer scheme.
func ExtractBearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.Fields(header)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}
