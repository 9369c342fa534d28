//go:build integration

package npm

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

func TestLatestVersion_Integration(t *testing.T) {
	client := NewClient(Options{Timeout: 30 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		{"express", "express", false},
		{"lodash", "lodash", false},
		{"scoped", "@types/node", false},
		{"nonexistent", "this-package-should-not-exist-12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, err := client.LatestVersion(ctx, tt.pkg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LatestVersion(%q) error = %v, wantErr %v", tt.pkg, err, tt.wantErr)
			}
			if tt.wantErr {
				if !pkgerrors.Is(err, pkgerrors.ErrCodeRegistry) {
					t.Errorf("LatestVersion(%q) error code = %s", tt.pkg, pkgerrors.GetCode(err))
				}
				return
			}
			if latest == "" {
				t.Error("latest version should not be empty")
			}
		})
	}
}
