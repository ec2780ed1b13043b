package cloudflare

import (
	"errors"
	"strings"
	"testing"

	"github.com/karstloch/dnspin/pkg/provider"
)

func TestConfig_Validate_Success(t *testing.T) {
	config := &Config{
		APIToken: "test-token",
	}

	if err := config.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestConfig_Validate_CustomEndpoint(t *testing.T) {
	config := &Config{
		APIToken:    "test-token",
		APIEndpoint: "https://api.example.com/client/v4",
	}

	if err := config.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestConfig_Validate_MissingToken(t *testing.T) {
	config := &Config{}

	err := config.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	var cfgErr *provider.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	if cfgErr.Field != "api_token" {
		t.Errorf("expected field api_token, got %q", cfgErr.Field)
	}
	if !strings.Contains(err.Error(), "required but not set") {
		t.Errorf("expected missing-field message, got %v", err)
	}
}

func TestConfig_Validate_RelativeEndpoint(t *testing.T) {
	config := &Config{
		APIToken:    "test-token",
		APIEndpoint: "client/v4",
	}

	err := config.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	var cfgErr *provider.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	if cfgErr.Field != "api_endpoint" || cfgErr.Value != "client/v4" {
		t.Errorf("unexpected error context: %+v", cfgErr)
	}
	if !strings.Contains(err.Error(), "must be an absolute URL") {
		t.Errorf("expected endpoint message, got %v", err)
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	config := &Config{APIEndpoint: "not a url"}

	err := config.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "api_token") {
		t.Errorf("expected token failure reported, got %v", err)
	}
	if !strings.Contains(err.Error(), "api_endpoint") {
		t.Errorf("expected endpoint failure reported, got %v", err)
	}
}
