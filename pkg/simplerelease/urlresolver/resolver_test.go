package urlresolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/simple-release/pkg/simplerelease/urlresolver"
)

func TestStaticResolve(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		storageRoot string
		key         string
		want        string
	}{
		{
			name:    "plain key joins with base",
			baseURL: "https://cdn.example.com/media",
			key:     "abc123.jpg",
			want:    "https://cdn.example.com/media/abc123.jpg",
		},
		{
			name:    "trailing slash on base is normalized",
			baseURL: "https://cdn.example.com/media/",
			key:     "abc123.jpg",
			want:    "https://cdn.example.com/media/abc123.jpg",
		},
		{
			name:        "storage root prefix is stripped",
			baseURL:     "https://cdn.example.com/media",
			storageRoot: "uploads/coverart",
			key:         "uploads/coverart/abc123.jpg",
			want:        "https://cdn.example.com/media/abc123.jpg",
		},
		{
			name:        "windows separators are normalized",
			baseURL:     "https://cdn.example.com/media",
			storageRoot: "uploads\\coverart",
			key:         "uploads\\coverart\\abc123.jpg",
			want:        "https://cdn.example.com/media/abc123.jpg",
		},
		{
			name:    "empty key maps to itself",
			baseURL: "https://cdn.example.com/media",
			key:     "",
			want:    "",
		},
		{
			name: "no base returns bare key",
			key:  "abc123.jpg",
			want: "abc123.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := urlresolver.NewStatic(tt.baseURL, tt.storageRoot)
			assert.Equal(t, tt.want, r.Resolve(tt.key))
		})
	}
}
