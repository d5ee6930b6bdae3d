package storage

import (
	"alcyxob/gym-manager/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3Config
		want string
	}{
		{
			name: "explicit public url wins",
			cfg:  config.S3Config{PublicBaseURL: "https://cdn.example.com/", Endpoint: "http://minio:9000", BucketName: "gym"},
			want: "https://cdn.example.com",
		},
		{
			name: "custom endpoint uses path style",
			cfg:  config.S3Config{Endpoint: "http://minio:9000/", BucketName: "gym"},
			want: "http://minio:9000/gym",
		},
		{
			name: "aws virtual host",
			cfg:  config.S3Config{BucketName: "gym", Region: "us-east-1"},
			want: "https://gym.s3.us-east-1.amazonaws.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBase(tt.cfg))
		})
	}
}
