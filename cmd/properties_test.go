package cmd

import (
	"testing"

	"github.com/rs/zerolog"

	"hostexport/internal/config"
)

func TestPropertiesClient_Timeout(t *testing.T) {
	tests := []struct {
		timeout string
		wantErr bool
	}{
		{"", false},
		{"15s", false},
		{"-10s", true},
		{"0", true},
		{"later", true},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			c := &config.Config{Token: "token", HTTPTimeout: tt.timeout}
			client, err := propertiesClient(c, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("propertiesClient(%q) error = %v, wantErr %v", tt.timeout, err, tt.wantErr)
			}
			if !tt.wantErr && client == nil {
				t.Error("expected a client")
			}
		})
	}
}
