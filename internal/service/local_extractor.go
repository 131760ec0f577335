package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/util"
)

// CommonSkills is the catalogue the local extractor recognises, in report order.
var CommonSkills = []string{
	// languages
	"python", "java", "javascript", "c++", "c#", "ruby", "php", "swift", "kotlin", "go", "rust", "typescript",
	"scala", "perl", "r", "matlab", "bash", "powershell", "vba", "objective-c", "dart", "assembly", "fortran",
	// web
	"html", "css", "html5", "css3", "react", "angular", "vue", "node.js", "express", "django", "flask",
	"bootstrap", "jquery", "sass", "less", "webpack", "gatsby", "next.js", "nuxt.js", "tailwind", "graphql",
	"rest api", "soap",
	// databases
	"sql", "mysql", "mongodb", "postgresql", "oracle", "nosql", "redis", "elasticsearch", "firebase",
	"dynamodb", "cassandra", "mariadb", "sqlite", "neo4j", "couchdb", "ms sql server",
	// devops and cloud
	"docker", "kubernetes", "aws", "azure", "gcp", "jenkins", "git", "ci/cd", "terraform", "ansible",
	"linux", "unix", "github", "bitbucket", "gitlab", "circleci", "travis ci", "heroku", "nginx", "apache",
	// ai and data
	"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn", "nlp", "computer vision",
	"data science", "pandas", "numpy", "keras", "opencv", "data mining", "neural networks", "ai",
	// mobile
	"android", "ios", "react native", "flutter", "xamarin", "ionic", "swift ui", "kotlin multiplatform",
	// tools
	"microsoft office", "excel", "powerpoint", "word", "outlook", "jira", "confluence", "trello",
	"slack", "photoshop", "illustrator", "figma", "sketch", "adobe xd", "tableau", "power bi",
	// soft skills
	"leadership", "communication", "teamwork", "problem solving", "critical thinking", "time management",
	"project management", "agile", "scrum", "kanban", "lean", "six sigma", "customer service",
}

type skillPattern struct {
	label string
	re    *regexp.Regexp
}

// LocalSkillExtractor matches PDF text against a skills catalogue without a
// remote call. Labels like "c++" and "node.js" are matched on non-word
// boundaries so punctuation inside a label does not break the match.
type LocalSkillExtractor struct {
	patterns []skillPattern
	textOf   func([]byte) (string, error)
}

func NewLocalSkillExtractor(catalogue []string) *LocalSkillExtractor {
	if len(catalogue) == 0 {
		catalogue = CommonSkills
	}
	patterns := make([]skillPattern, 0, len(catalogue))
	for _, label := range catalogue {
		expr := `(?:^|[^a-z0-9_])` + regexp.QuoteMeta(strings.ToLower(label)) + `(?:$|[^a-z0-9_])`
		patterns = append(patterns, skillPattern{label: label, re: regexp.MustCompile(expr)})
	}
	return &LocalSkillExtractor{patterns: patterns, textOf: util.ExtractPDFText}
}

func (e *LocalSkillExtractor) ExtractSkills(ctx context.Context, doc model.Document) (model.SkillSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, &apperror.TransportError{Op: opExtract, Err: err}
	}

	text, err := e.textOf(doc.Content)
	if err != nil {
		return nil, &apperror.ServiceError{Op: opExtract, Message: "Failed to process PDF: " + err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &apperror.ServiceError{Op: opExtract, Message: "No text content found in the PDF."}
	}
	return e.Match(text), nil
}

// Match returns every catalogue label found in text, in catalogue order.
func (e *LocalSkillExtractor) Match(text string) model.SkillSet {
	lower := strings.ToLower(text)
	found := model.SkillSet{}
	for _, p := range e.patterns {
		if p.re.MatchString(lower) {
			found = append(found, p.label)
		}
	}
	return found
}
