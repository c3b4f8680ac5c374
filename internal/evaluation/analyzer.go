package evaluation

import (
	"context"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/oncodeoperations/artemis-core/internal/ports"
	"github.com/oncodeoperations/artemis-core/internal/scoring"
)

const (
	maxAnalyzedFileBytes = 50 * 1024
	maxAnalyzedFileLines = 150
	maxInFlightFetches   = 8
)

var sourceExtensions = map[string]string{
	".go": "Go", ".ts": "TypeScript", ".tsx": "TypeScript", ".js": "JavaScript",
	".jsx": "JavaScript", ".py": "Python", ".rb": "Ruby", ".java": "Java",
	".rs": "Rust", ".c": "C", ".cpp": "C++", ".cs": "C#", ".php": "PHP",
	".kt": "Kotlin", ".swift": "Swift",
}

var testPathPattern = regexp.MustCompile(`(?i)(^|/)(test|tests|spec|specs|__tests__)(/|$)|_test\.|\.test\.|\.spec\.`)
var configPathPattern = regexp.MustCompile(`(?i)\.(ya?ml|json|toml|ini|cfg|lock)$|^\.env|^vendor/|^node_modules/|dist/|build/`)
var generatedPathPattern = regexp.MustCompile(`(?i)\.pb\.go$|_generated\.|\.gen\.`)

var modernSyntaxPattern = regexp.MustCompile(`(?i)async|await|=>|generics|<T>|interface\{\}|:=`)
var errorHandlingPattern = regexp.MustCompile(`(?i)\btry\b|\bcatch\b|\berror\b|\berr\s*!=\s*nil\b|\bexcept\b|\.unwrap\(\)|\bRescue\b`)
var typeAnnotationPattern = regexp.MustCompile(`: *(string|number|int|bool|float|\[\]|\w+\[\])`)
var docstringPattern = regexp.MustCompile(`"""|/\*\*|^\s*//[^\n]*$|^\s*#[^\n]*$`)

var frameworkHints = map[string]string{
	"gin-gonic/gin": "gin", "gorilla/mux": "gorilla", "labstack/echo": "echo",
	"express": "express", "fastapi": "fastapi", "django": "django", "flask": "flask",
	"react": "react", "next": "next.js", "vue": "vue", "@angular": "angular",
	"spring": "spring", "gorm.io/gorm": "gorm",
}

type fileMetrics struct {
	modernSyntax    bool
	errorHandling   bool
	typeAnnotated   bool
	hasDocstring    bool
	complexityProxy float64
}

// RepoAnalysis bundles the aggregate signals plus the small set of
// curated code samples the LLM enrichment stage consumes as context.
type RepoAnalysis struct {
	Repo          ports.Repo
	Aggregate     scoring.RepoAggregate
	TestFileCount int
	TotalFiles    int
	CodeSamples   []string
}

type Analyzer struct {
	host ports.CodeHost
}

func NewAnalyzer(host ports.CodeHost) *Analyzer {
	return &Analyzer{host: host}
}

// AnalyzeAll fans out across repos with bounded parallelism (<=8
// in-flight), per spec §4.1's concurrency note, to respect code-host
// rate limits while still analyzing the top-N filtered repos quickly.
func (a *Analyzer) AnalyzeAll(ctx context.Context, repos []ports.Repo) ([]RepoAnalysis, error) {
	results := make([]RepoAnalysis, len(repos))
	errs := make([]error, len(repos))

	sem := make(chan struct{}, maxInFlightFetches)
	var wg sync.WaitGroup

	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo ports.Repo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			analysis, err := a.analyzeRepo(ctx, repo)
			results[i] = analysis
			errs[i] = err
		}(i, repo)
	}
	wg.Wait()

	out := make([]RepoAnalysis, 0, len(repos))
	for i, err := range errs {
		if err != nil {
			continue
		}
		out = append(out, results[i])
	}
	return out, nil
}

func (a *Analyzer) analyzeRepo(ctx context.Context, repo ports.Repo) (RepoAnalysis, error) {
	parts := strings.SplitN(repo.FullName, "/", 2)
	owner, name := repo.FullName, repo.Name
	if len(parts) == 2 {
		owner, name = parts[0], parts[1]
	}

	files, err := a.host.ListFiles(ctx, owner, name)
	if err != nil {
		return RepoAnalysis{}, err
	}

	var testFiles, totalFiles int
	var metricsAcc []fileMetrics
	var samples []string

	languages := make(map[string]bool)
	frameworks := make(map[string]bool)
	folders := make(map[string]bool)
	var maxDepth int
	var hasEntryPoint, hasConfig, hasBuildScript, hasLockfile, hasLintConfig, hasLicense bool
	var readmePath string

	for _, f := range files {
		if f.Dir {
			continue
		}
		ext := path.Ext(f.Path)
		dir := path.Dir(f.Path)
		if dir != "." {
			folders[dir] = true
			depth := strings.Count(dir, "/") + 1
			if depth > maxDepth {
				maxDepth = depth
			}
		}

		base := strings.ToLower(path.Base(f.Path))
		switch {
		case base == "main.go" || base == "index.js" || base == "index.ts" || base == "app.py" || base == "main.py":
			hasEntryPoint = true
		case base == "dockerfile" || base == "makefile":
			hasBuildScript = true
		case base == "go.mod" || base == "package.json" || base == "pyproject.toml" || base == "cargo.toml":
			hasConfig = true
		case base == "go.sum" || base == "package-lock.json" || base == "yarn.lock" || base == "cargo.lock":
			hasLockfile = true
		case strings.Contains(base, "eslint") || strings.Contains(base, "golangci") || base == ".flake8":
			hasLintConfig = true
		case base == "license" || base == "license.md" || base == "license.txt":
			hasLicense = true
		case base == "readme.md" || base == "readme" || base == "readme.rst":
			readmePath = f.Path
		}

		if testPathPattern.MatchString(f.Path) {
			testFiles++
			totalFiles++
			continue
		}
		if configPathPattern.MatchString(f.Path) || generatedPathPattern.MatchString(f.Path) {
			continue
		}

		lang, ok := sourceExtensions[ext]
		if !ok {
			continue
		}
		totalFiles++
		languages[lang] = true

		if f.Size > maxAnalyzedFileBytes {
			continue
		}

		content, err := a.host.GetFile(ctx, owner, name, f.Path)
		if err != nil {
			continue
		}
		text := truncateLines(string(content.Content), maxAnalyzedFileLines)

		for needle, fw := range frameworkHints {
			if strings.Contains(text, needle) {
				frameworks[fw] = true
			}
		}

		fm := fileMetrics{
			modernSyntax:    modernSyntaxPattern.MatchString(text),
			errorHandling:   errorHandlingPattern.MatchString(text),
			typeAnnotated:   typeAnnotationPattern.MatchString(text),
			hasDocstring:    docstringPattern.MatchString(text),
			complexityProxy: complexityProxyOf(text),
		}
		metricsAcc = append(metricsAcc, fm)

		if len(samples) < 5 && len(text) > 200 {
			samples = append(samples, text)
		}
	}

	agg := aggregateFileMetrics(metricsAcc)
	agg.HasLockfile = hasLockfile
	agg.HasLintConfig = hasLintConfig
	agg.HasLicense = hasLicense
	agg.HasEntryPoint = hasEntryPoint
	agg.HasConfig = hasConfig
	agg.HasBuildScript = hasBuildScript
	agg.UniqueFolderCount = len(folders)
	agg.MaxFolderDepth = maxDepth
	agg.SizeAboveFloor = repo.SizeKB >= minRepoSizeKB*5
	for l := range languages {
		agg.Languages = append(agg.Languages, l)
	}
	for f := range frameworks {
		agg.Frameworks = append(agg.Frameworks, f)
	}
	if totalFiles > 0 {
		agg.TestFileRatio = float64(testFiles) / float64(totalFiles)
	}
	if readmePath != "" {
		if readme, err := a.host.GetFile(ctx, owner, name, readmePath); err == nil {
			agg.ReadmeQuality = readmeQualityOf(string(readme.Content))
		}
	}
	agg.CICDMaturity = cicdMaturityOf(files)

	return RepoAnalysis{
		Repo:          repo,
		Aggregate:     agg,
		TestFileCount: testFiles,
		TotalFiles:    totalFiles,
		CodeSamples:   samples,
	}, nil
}

func aggregateFileMetrics(files []fileMetrics) scoring.RepoAggregate {
	if len(files) == 0 {
		return scoring.RepoAggregate{}
	}
	var modern, errHandling, typeSafe, docs, complexity float64
	for _, f := range files {
		if f.modernSyntax {
			modern++
		}
		if f.errorHandling {
			errHandling++
		}
		if f.typeAnnotated {
			typeSafe++
		}
		if f.hasDocstring {
			docs++
		}
		complexity += f.complexityProxy
	}
	n := float64(len(files))
	return scoring.RepoAggregate{
		ModernSyntaxRatio:    modern / n,
		ErrorHandlingDensity: errHandling / n,
		TypeSafetyRatio:      typeSafe / n,
		DocumentationDensity: docs / n,
		CommentDensity:       docs / n,
		AvgComplexity:        complexity / n,
	}
}

// complexityProxyOf counts branching keywords as a cheap cyclomatic-
// complexity stand-in, since the spec calls for a "proxy", not a full
// AST-based computation.
func complexityProxyOf(text string) float64 {
	branchPattern := regexp.MustCompile(`\b(if|for|while|case|switch|catch|&&|\|\|)\b`)
	return float64(len(branchPattern.FindAllString(text, -1)))
}

var (
	headingPattern = regexp.MustCompile(`(?m)^#\s+\S`)
	setupPattern   = regexp.MustCompile(`(?i)##?\s*(install|setup|getting started)`)
	usagePattern   = regexp.MustCompile(`(?i)##?\s*(usage|example)`)
	badgePattern   = regexp.MustCompile(`!\[[^\]]*\]\(|<img\s`)
)

// readmeQualityOf scores 1 point each for: a top-level heading, at
// least 100 characters of body, a setup/install section, a usage/
// example section, and images or badges. Max 5, per spec §4.1b.
func readmeQualityOf(content string) float64 {
	var score float64
	if headingPattern.MatchString(content) {
		score++
	}
	if len(strings.TrimSpace(content)) >= 100 {
		score++
	}
	if setupPattern.MatchString(content) {
		score++
	}
	if usagePattern.MatchString(content) {
		score++
	}
	if badgePattern.MatchString(content) {
		score++
	}
	return score
}

func cicdMaturityOf(files []ports.RepoFile) float64 {
	var workflowCount int
	var hasMatrix bool
	for _, f := range files {
		if strings.Contains(f.Path, ".github/workflows/") && strings.HasSuffix(f.Path, ".yml") {
			workflowCount++
		}
		if strings.Contains(strings.ToLower(f.Path), "matrix") {
			hasMatrix = true
		}
	}
	switch {
	case workflowCount == 0:
		return 0
	case hasMatrix:
		return 3
	case workflowCount > 1:
		return 2
	default:
		return 1
	}
}

func truncateLines(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}
