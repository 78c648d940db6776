package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateQuestion(t *testing.T) {
	short := "top 5 movies by rating"
	assert.Equal(t, short, TruncateQuestion(short))

	long := strings.Repeat("a", MaxQuestionLogLength+50)
	got := TruncateQuestion(long)
	assert.Len(t, got, MaxQuestionLogLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantGone string
	}{
		{
			name:     "password in connection string",
			err:      errors.New(`connect failed: host=db password=hunter2 dbname=askdata`),
			wantGone: "hunter2",
		},
		{
			name:     "credentials in URL",
			err:      errors.New(`dial postgres://admin:s3cret@db:5432/askdata: refused`),
			wantGone: "s3cret",
		},
		{
			name:     "api key in query",
			err:      errors.New(`GET /v1/embeddings?api_key=abcdefghijklmnopqrstuvwxyz failed`),
			wantGone: "abcdefghijklmnopqrstuvwxyz",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.err)
			assert.NotContains(t, got, tt.wantGone)
			assert.Contains(t, got, RedactedText)
		})
	}

	assert.Equal(t, "", SanitizeError(nil))
}
