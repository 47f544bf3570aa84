// ABOUTME: Tests for the dayboard command helpers
// ABOUTME: Covers health endpoint address resolution

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayboard/dayboard/internal/config"
)

func TestHealthURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{
			name: "plain http addr",
			cfg: config.Config{
				Server: config.ServerConfig{HTTPAddr: "127.0.0.1:8080"},
			},
			want: "http://127.0.0.1:8080/health",
		},
		{
			name: "tailnet only server uses hostname",
			cfg: config.Config{
				Tailscale: config.TailscaleConfig{Enabled: true, Hostname: "dayboard"},
			},
			want: "http://dayboard/health",
		},
		{
			name: "http addr preferred over hostname",
			cfg: config.Config{
				Server:    config.ServerConfig{HTTPAddr: "127.0.0.1:8080"},
				Tailscale: config.TailscaleConfig{Enabled: true, Hostname: "dayboard"},
			},
			want: "http://127.0.0.1:8080/health",
		},
		{
			name:    "no address at all",
			cfg:     config.Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := healthURL(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
