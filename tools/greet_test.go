package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreet_Invoke(t *testing.T) {
	r, err := NewRegistry(NewGreet())
	require.NoError(t, err)

	tests := []struct {
		name  string
		input map[string]any
		want  string
	}{
		{
			name:  "korean",
			input: map[string]any{"name": "Tom", "language": "ko"},
			want:  "안녕하세요, Tom님!",
		},
		{
			name:  "english",
			input: map[string]any{"name": "Tom", "language": "en"},
			want:  "Hey there, Tom! 👋 Nice to meet you!",
		},
		{
			name:  "language defaults to english",
			input: map[string]any{"name": "Tom"},
			want:  "Hey there, Tom! 👋 Nice to meet you!",
		},
		{
			name:  "unicode name",
			input: map[string]any{"name": "민수", "language": "ko"},
			want:  "안녕하세요, 민수님!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Invoke(context.Background(), "greet", tt.input)
			require.NoError(t, err)
			require.False(t, res.IsError, res.Text())
			assert.Equal(t, tt.want, res.Text())
			assert.Equal(t, map[string]any{"greeting": tt.want}, res.StructuredContent)
		})
	}
}

func TestGreeting_Deterministic(t *testing.T) {
	for _, lang := range []string{LanguageKorean, LanguageEnglish} {
		assert.Equal(t, Greeting("Ana", lang), Greeting("Ana", lang))
	}
	assert.NotEqual(t, Greeting("Ana", LanguageKorean), Greeting("Ana", LanguageEnglish))
}
