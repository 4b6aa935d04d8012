package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/domain"
)

func TestFallbackAppName(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "skips filler words and title-cases",
			prompt: "please make a snake game with apples",
			want:   "Snake Game Apples",
		},
		{
			name:   "caps at three words",
			prompt: "colorful piano keyboard sound board toy",
			want:   "Colorful Piano Keyboard",
		},
		{
			name:   "strips punctuation",
			prompt: "build me a rocket, now!",
			want:   "Rocket Now",
		},
		{
			name:   "empty prompt falls back to default",
			prompt: "",
			want:   "My App",
		},
		{
			name:   "all-filler prompt falls back to default",
			prompt: "please make me an app",
			want:   "My App",
		},
		{
			name:   "normalizes shouting",
			prompt: "SPACE INVADERS",
			want:   "Space Invaders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.FallbackAppName(tt.prompt))
		})
	}
}

func TestFallbackAppName_Deterministic(t *testing.T) {
	prompt := "a drawing board for dinosaurs"

	first := domain.FallbackAppName(prompt)
	second := domain.FallbackAppName(prompt)

	require.Equal(t, first, second)
}
