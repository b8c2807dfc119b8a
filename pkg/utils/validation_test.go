package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "http://localhost:5000", want: "http://localhost:5000"},
		{name: "trailing slash", input: " http://localhost:5000/ ", want: "http://localhost:5000"},
		{name: "with prefix", input: "https://example.com/scraper/", want: "https://example.com/scraper"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "no scheme", input: "localhost:5000", wantErr: true},
		{name: "ftp", input: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
