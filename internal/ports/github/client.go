// Package github implements ports.CodeHost against the GitHub REST
// API over plain net/http. No repo in the retrieved example pack
// imports a GitHub SDK, so this adapter is the stdlib HTTP client the
// spec itself frames CodeHost as: "a small capability port."
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/ports"
)

const baseURL = "https://api.github.com"
const callTimeout = 30 * time.Second

type Client struct {
	token string
	http  *http.Client
	log   *logrus.Entry
}

func New(token string, log *logrus.Entry) *Client {
	return &Client{
		token: token,
		http:  &http.Client{Timeout: callTimeout},
		log:   log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return resp, &ports.CodeHostError{Kind: ports.CodeHostNotFound, Message: "resource not found: " + path}
	case http.StatusUnauthorized:
		return resp, &ports.CodeHostError{Kind: ports.CodeHostUnauthorized, Message: "unauthorized request: " + path}
	case http.StatusForbidden:
		retryAfter := 60
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				retryAfter = secs
			}
		}
		return resp, &ports.CodeHostError{Kind: ports.CodeHostRateLimit, Message: "rate limited", RetryAfter: retryAfter}
	}

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return resp, fmt.Errorf("github: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		return resp, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp, nil
}

func (c *Client) GetUser(ctx context.Context, username string) (*ports.RepoUser, error) {
	var raw struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatar_url"`
		Location  string `json:"location"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/users/"+username, &raw); err != nil {
		return nil, err
	}
	name := raw.Name
	if name == "" {
		name = raw.Login
	}
	return &ports.RepoUser{Username: raw.Login, Name: name, Bio: raw.Bio, Avatar: raw.AvatarURL, Location: raw.Location}, nil
}

func (c *Client) ListRepos(ctx context.Context, username string, page, perPage int) ([]ports.Repo, bool, error) {
	var raw []struct {
		Name            string    `json:"name"`
		FullName        string    `json:"full_name"`
		Description     string    `json:"description"`
		Fork            bool      `json:"fork"`
		Archived        bool      `json:"archived"`
		Disabled        bool      `json:"disabled"`
		Size            int       `json:"size"`
		Stargazers      int       `json:"stargazers_count"`
		ForksCount      int       `json:"forks_count"`
		CreatedAt       time.Time `json:"created_at"`
		UpdatedAt       time.Time `json:"updated_at"`
		PushedAt        time.Time `json:"pushed_at"`
		Language        string    `json:"language"`
	}
	path := fmt.Sprintf("/users/%s/repos?page=%d&per_page=%d&sort=updated", username, page, perPage)
	if _, err := c.do(ctx, http.MethodGet, path, &raw); err != nil {
		return nil, false, err
	}

	repos := make([]ports.Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, ports.Repo{
			Name: r.Name, FullName: r.FullName, Description: r.Description,
			Fork: r.Fork, Archived: r.Archived, Disabled: r.Disabled,
			SizeKB: r.Size, Stars: r.Stargazers, Forks: r.ForksCount,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, PushedAt: r.PushedAt,
			PrimaryLanguage: r.Language,
		})
	}
	hasMore := len(raw) == perPage
	return repos, hasMore, nil
}

func (c *Client) ListFiles(ctx context.Context, owner, repo string) ([]ports.RepoFile, error) {
	var raw struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			Size int    `json:"size"`
		} `json:"tree"`
	}
	path := fmt.Sprintf("/repos/%s/%s/git/trees/HEAD?recursive=1", owner, repo)
	if _, err := c.do(ctx, http.MethodGet, path, &raw); err != nil {
		return nil, err
	}

	files := make([]ports.RepoFile, 0, len(raw.Tree))
	for _, t := range raw.Tree {
		files = append(files, ports.RepoFile{Path: t.Path, Size: t.Size, Dir: t.Type == "tree"})
	}
	return files, nil
}

func (c *Client) GetFile(ctx context.Context, owner, repo, path string) (*ports.FileContent, error) {
	var raw struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	reqPath := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	if _, err := c.do(ctx, http.MethodGet, reqPath, &raw); err != nil {
		return nil, err
	}

	content := []byte(raw.Content)
	if raw.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(raw.Content)
		if err == nil {
			content = decoded
		}
	}
	return &ports.FileContent{Path: path, Content: content}, nil
}

func (c *Client) ListCommits(ctx context.Context, owner, repo string, since time.Time, author string) ([]ports.Commit, error) {
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Author struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
			Message string `json:"message"`
		} `json:"commit"`
	}
	path := fmt.Sprintf("/repos/%s/%s/commits?since=%s&author=%s", owner, repo, since.UTC().Format(time.RFC3339), author)
	if _, err := c.do(ctx, http.MethodGet, path, &raw); err != nil {
		return nil, err
	}

	commits := make([]ports.Commit, 0, len(raw))
	for _, r := range raw {
		commits = append(commits, ports.Commit{SHA: r.SHA, Author: r.Commit.Author.Name, Message: r.Commit.Message, Timestamp: r.Commit.Author.Date})
	}
	return commits, nil
}
