package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 {
		t.Errorf("id = %d", claims.UserID)
	}
	if time.Since(claims.IssuedAtTime()) > time.Minute {
		t.Errorf("iat = %v", claims.IssuedAtTime())
	}
}

func TestParseTokenErrors(t *testing.T) {
	expired, _ := GenerateToken(1, "secret", -time.Minute)
	valid, _ := GenerateToken(1, "secret", time.Hour)

	tests := []struct {
		name   string
		token  string
		secret string
		want   string
	}{
		{"expired", expired, "secret", ErrExpiredToken.Message},
		{"wrong secret", valid, "other", ErrInvalidToken.Message},
		{"garbage", "not.a.token", "secret", ErrInvalidToken.Message},
	}
	for _, tt := range tests {
		_, err := ParseToken(tt.token, tt.secret)
		ae, ok := AsAppError(err)
		if !ok || ae.Message != tt.want || ae.StatusCode != 401 {
			t.Errorf("%s: err = %v", tt.name, err)
		}
	}
}
