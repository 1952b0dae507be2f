package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("title required"), KindValidation},
		{"conflict", Conflict("dup"), KindConflict},
		{"not found", NotFound("goal not found"), KindNotFound},
		{"authn", Unauthenticated(CodeMissingCredential, "no token"), KindAuthentication},
		{"authz", Forbidden(CodeNotOwner, "not authorized"), KindAuthorization},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("x")), KindNotFound},
		{"foreign", errors.New("boom"), KindUnexpected},
		{"wrap", Wrap(errors.New("socket closed"), "load goal"), KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("repo: %w", NotFound("user not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("did not expect errors.Is to match ErrConflict")
	}
}

func TestIs_MatchesCode(t *testing.T) {
	err := Unauthenticated(CodeRevokedCredential, "token revoked")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Error("expected kind match without code")
	}
	if !errors.Is(err, &Error{Kind: KindAuthentication, Code: CodeRevokedCredential}) {
		t.Error("expected code match")
	}
	if errors.Is(err, &Error{Kind: KindAuthentication, Code: CodeMissingCredential}) {
		t.Error("did not expect a different code to match")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}

	cause := errors.New("connection refused")
	err := Wrap(cause, "insert user")
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via Unwrap")
	}
	if err.Error() != "insert user: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}

	nf := NotFound("gone")
	if Wrap(nf, "lookup") != error(nf) {
		t.Error("Wrap should keep an existing *Error untouched")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(Forbidden(CodeInsufficientRole, "nope")); got != CodeInsufficientRole {
		t.Errorf("CodeOf() = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}
