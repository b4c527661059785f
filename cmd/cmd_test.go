package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachx/coachx/internal/api"
)

func TestParseServeAddr(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"default", nil, api.DefaultAddr, false},
		{"explicit", []string{"0.0.0.0:9000"}, "0.0.0.0:9000", false},
		{"port only", []string{":8080"}, ":8080", false},
		{"missing port", []string{"localhost"}, "", true},
		{"bad port", []string{"localhost:abc"}, "", true},
		{"port out of range", []string{"localhost:70000"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseServeAddr(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAddr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "not set", maskKey(""))
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "AIza...wxyz", maskKey("AIzaSomeLongKeywxyz"))
}
