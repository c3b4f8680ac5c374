package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameFromGitHubURL(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare username", input: "octocat", want: "octocat"},
		{name: "https url", input: "https://github.com/octocat", want: "octocat"},
		{name: "https url with trailing segment", input: "https://github.com/octocat/Hello-World", want: "octocat"},
		{name: "no scheme", input: "github.com/octocat", want: "octocat"},
		{name: "mixed case host", input: "https://GitHub.com/octocat", want: "octocat"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "non-github host", input: "https://gitlab.com/octocat", wantErr: true},
		{name: "trailing slash only", input: "https://github.com/", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := usernameFromGitHubURL(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateRequest_URLPrefersCamelCase(t *testing.T) {
	r := evaluateRequest{GitHubURLCamel: "octocat", GitHubURLSnake: "other"}
	assert.Equal(t, "octocat", r.url())

	r = evaluateRequest{GitHubURLSnake: "other"}
	assert.Equal(t, "other", r.url())
}
