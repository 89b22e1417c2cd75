package main

import (
	"testing"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneName   string
		expectError bool
	}{
		{"cornell scene", "cornell", false},
		{"pointlight scene", "pointlight", false},
		{"unknown scene", "nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := createScene(tt.sceneName, 64, 64)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for scene %q, got none", tt.sceneName)
				}
				if sc != nil {
					t.Errorf("expected nil scene for %q", tt.sceneName)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error for scene %q: %v", tt.sceneName, err)
			}
			if sc == nil {
				t.Fatalf("expected scene for %q, got nil", tt.sceneName)
			}
			if sc.Camera() == nil {
				t.Errorf("scene %q has no camera", tt.sceneName)
			}
			if len(sc.Lights()) == 0 {
				t.Errorf("scene %q has no lights", tt.sceneName)
			}
		})
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, flag := range []string{
		"scene", "integrator", "width", "height", "max-depth",
		"spp", "mutations-per-pixel", "bootstrap", "chains",
		"sigma", "large-step-prob", "workers", "output",
	} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag --%s not registered", flag)
		}
	}
}
