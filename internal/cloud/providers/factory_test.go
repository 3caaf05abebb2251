package providers

import (
	nethttp "net/http"
	"testing"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/config"
)

func TestFactory_New(t *testing.T) {
	f := NewFactory(&nethttp.Client{}, nil)

	tests := []struct {
		name     string
		cfg      config.LiveConfig
		wantName string
		wantErr  bool
	}{
		{"none", config.LiveConfig{}, "unavailable", false},
		{"s3", config.LiveConfig{Provider: "s3", Bucket: "drive"}, "s3", false},
		{"S3 upper", config.LiveConfig{Provider: "S3", Bucket: "drive"}, "s3", false},
		{"s3 without bucket", config.LiveConfig{Provider: "s3"}, "", true},
		{"azure", config.LiveConfig{Provider: "azure", Container: "drive"}, "azure", false},
		{"unknown", config.LiveConfig{Provider: "gcs"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := f.New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := cloud.ProviderName(storage); got != tt.wantName {
				t.Errorf("provider = %s, want %s", got, tt.wantName)
			}
		})
	}
}
