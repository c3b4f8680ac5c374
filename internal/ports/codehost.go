// Package ports defines the narrow external capability interfaces the
// core depends on: CodeHost, LLM, PaymentGateway, and Mailer. Per
// spec §1 these sit at the system boundary; the core only ever depends
// on the interfaces in this file, never on a concrete SDK type.
package ports

import (
	"context"
	"time"
)

type RepoUser struct {
	Username string
	Name     string
	Bio      string
	Avatar   string
	Location string
}

type Repo struct {
	Name            string
	FullName        string
	Description     string
	Fork            bool
	Archived        bool
	Disabled        bool
	SizeKB          int
	Stars           int
	Forks           int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PushedAt        time.Time
	PrimaryLanguage string
}

type RepoFile struct {
	Path string
	Size int
	Dir  bool
}

type FileContent struct {
	Path    string
	Content []byte
}

type Commit struct {
	SHA       string
	Author    string
	Message   string
	Timestamp time.Time
}

// CodeHostError distinguishes the failure shapes the evaluation
// pipeline must classify per spec §4.1 step 1.
type CodeHostErrorKind string

const (
	CodeHostNotFound    CodeHostErrorKind = "not_found"
	CodeHostUnauthorized CodeHostErrorKind = "unauthorized"
	CodeHostRateLimit   CodeHostErrorKind = "rate_limited"
)

type CodeHostError struct {
	Kind       CodeHostErrorKind
	Message    string
	RetryAfter int
}

func (e *CodeHostError) Error() string { return e.Message }

// CodeHost is the capability port onto the public code-hosting
// platform (GitHub-shaped). Every method takes a context so the
// 30-second per-call timeout of spec §5 can be enforced by the caller.
type CodeHost interface {
	GetUser(ctx context.Context, username string) (*RepoUser, error)
	ListRepos(ctx context.Context, username string, page, perPage int) ([]Repo, bool, error)
	ListFiles(ctx context.Context, owner, repo string) ([]RepoFile, error)
	GetFile(ctx context.Context, owner, repo, path string) (*FileContent, error)
	ListCommits(ctx context.Context, owner, repo string, since time.Time, author string) ([]Commit, error)
}
