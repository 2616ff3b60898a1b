package extract

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"jobfinder/internal/errors"
)

// KeywordCluster maps a keyword pattern found anywhere in the document head
// to an inferred role. Clusters are evaluated in order, first match wins.
type KeywordCluster struct {
	Pattern *regexp.Regexp
	Role    string
}

// Vocabulary holds the curated title phrases, title patterns, keyword
// clusters and skill terms that drive field extraction. All accessors
// return snapshots so a concurrent reload never mutates a slice a caller
// is iterating.
type Vocabulary struct {
	mu       sync.RWMutex
	titles   []string
	patterns []*regexp.Regexp
	clusters []KeywordCluster
	skills   []string

	watcher *fsnotify.Watcher
	logger  *errors.Logger
}

// defaultExactTitles are tested as case-insensitive substrings against
// resume lines. Order matters: earlier entries win.
var defaultExactTitles = []string{
	"software engineer",
	"software developer",
	"backend developer",
	"frontend developer",
	"full stack developer",
	"data analyst",
	"data engineer",
	"machine learning engineer",
	"devops engineer",
	"cloud engineer",
}

// defaultTitlePatterns cover the role families exact phrases miss.
var defaultTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(full[\s\-]?stack)?.*software (engineer|developer)`),
	regexp.MustCompile(`(?i)(back[\s\-]?end|backend).*developer`),
	regexp.MustCompile(`(?i)(front[\s\-]?end|frontend).*developer`),
	regexp.MustCompile(`(?i)(data|business).*analyst`),
	regexp.MustCompile(`(?i)data.*engineer`),
	regexp.MustCompile(`(?i)machine learning.*engineer`),
	regexp.MustCompile(`(?i)devops.*engineer`),
}

// defaultKeywordClusters infer a role from technology keywords when no line
// states a title outright. Objective-line clusters come first so a stated
// goal beats incidental tooling mentions.
var defaultKeywordClusters = []KeywordCluster{
	{regexp.MustCompile(`objective.*data analyst`), "Data Analyst"},
	{regexp.MustCompile(`objective.*software engineer`), "Software Engineer"},
	{regexp.MustCompile(`b\.tech.*computer`), "Software Engineer"},
	{regexp.MustCompile(`react|angular|typescript`), "Frontend Developer"},
	{regexp.MustCompile(`java|spring|api`), "Backend Developer"},
	{regexp.MustCompile(`service desk|help desk|itil`), "IT Support"},
	{regexp.MustCompile(`aws|docker|linux|devops`), "DevOps Engineer"},
	{regexp.MustCompile(`excel|power bi|sql`), "Data Analyst"},
}

// defaultSkills is the curated technology vocabulary scanned against the
// full document text. Order determines which skills survive the cap.
var defaultSkills = []string{
	"JavaScript", "Python", "Java", "C++", "C#", "PHP", "Ruby", "Go", "Rust", "Swift", "Kotlin",
	"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask", "Spring", "Laravel",
	"HTML", "CSS", "SASS", "LESS", "Bootstrap", "Tailwind", "Material-UI",
	"MongoDB", "MySQL", "PostgreSQL", "Redis", "Elasticsearch", "DynamoDB",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins", "Git", "GitHub",
	"REST", "GraphQL", "API", "Microservices", "CI/CD", "DevOps", "Agile",
	"Machine Learning", "AI", "Data Science", "TensorFlow", "PyTorch", "Pandas",
	"TypeScript", "ES6", "Webpack", "Babel", "Jest", "Mocha", "JUnit", "Selenium",
}

// NewVocabulary returns a vocabulary seeded with the built-in defaults.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		titles:   defaultExactTitles,
		patterns: defaultTitlePatterns,
		clusters: defaultKeywordClusters,
		skills:   defaultSkills,
	}
}

// LoadDir overlays the vocabulary with titles.txt and skills.txt from dir,
// if present. Missing files leave the corresponding defaults in place.
func (v *Vocabulary) LoadDir(dir string) error {
	titles, err := readLines(filepath.Join(dir, "titles.txt"))
	if err != nil {
		return err
	}
	skills, err := readLines(filepath.Join(dir, "skills.txt"))
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(titles) > 0 {
		v.titles = titles
	}
	if len(skills) > 0 {
		v.skills = skills
	}
	return nil
}

// Watch reloads the vocabulary whenever a file in dir changes. The watcher
// goroutine stops when Close is called.
func (v *Vocabulary) Watch(dir string, logger *errors.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewIOError(errors.ErrCodeWatcherFailed, "failed to create vocabulary watcher", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return errors.NewIOError(errors.ErrCodeWatcherFailed, "failed to watch vocabulary directory", err).
			WithContext("dir", dir)
	}

	v.watcher = watcher
	v.logger = logger

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := v.LoadDir(dir); err != nil {
					logger.Warn("vocabulary reload failed", "dir", dir, "error", err.Error())
					continue
				}
				logger.Info("vocabulary reloaded", "dir", dir, "trigger", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("vocabulary watcher error", "error", err.Error())
			}
		}
	}()

	return nil
}

// Close stops the vocabulary watcher, if one was started.
func (v *Vocabulary) Close() error {
	if v.watcher != nil {
		return v.watcher.Close()
	}
	return nil
}

// ExactTitles returns the current exact-phrase title vocabulary.
func (v *Vocabulary) ExactTitles() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.titles
}

// TitlePatterns returns the current ordered title patterns.
func (v *Vocabulary) TitlePatterns() []*regexp.Regexp {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.patterns
}

// KeywordClusters returns the current ordered keyword clusters.
func (v *Vocabulary) KeywordClusters() []KeywordCluster {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.clusters
}

// Skills returns the current skill vocabulary.
func (v *Vocabulary) Skills() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.skills
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to open vocabulary file", err).
			WithContext("path", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read vocabulary file", err).
			WithContext("path", path)
	}
	return lines, nil
}
