package extract

import (
	"testing"
)

func TestDetectTitleCascade(t *testing.T) {
	vocab := NewVocabulary()
	strategies := []TitleStrategy{
		&exactVocabStrategy{vocab: vocab, window: 60},
		&patternStrategy{vocab: vocab, window: 80},
		&keywordClusterStrategy{vocab: vocab, window: 50},
		&filenameStrategy{vocab: vocab},
	}

	tests := []struct {
		name         string
		lines        []string
		filename     string
		wantTitle    string
		wantStrategy string
	}{
		{
			name:         "exact vocabulary match",
			lines:        []string{"Jane Doe", "contact@example.com", "Data Engineer"},
			filename:     "resume.pdf",
			wantTitle:    "Data Engineer",
			wantStrategy: "exact-vocabulary",
		},
		{
			name:         "exact match inside a longer line",
			lines:        []string{"Jane Doe", "Experienced professional", "Senior Software Engineer"},
			filename:     "resume.pdf",
			wantTitle:    "Software Engineer",
			wantStrategy: "exact-vocabulary",
		},
		{
			name:         "exact wins over pattern for data engineer",
			lines:        []string{"data engineer with analytics background"},
			filename:     "resume.pdf",
			wantTitle:    "Data Engineer",
			wantStrategy: "exact-vocabulary",
		},
		{
			name:         "pattern match when vocabulary misses",
			lines:        []string{"Jane Doe", "Back-end Web Developer"},
			filename:     "resume.pdf",
			wantTitle:    "Back-End Web Developer",
			wantStrategy: "pattern",
		},
		{
			name:         "keyword cluster inference",
			lines:        []string{"Jane Doe", "Built dashboards with React and TypeScript"},
			filename:     "resume.pdf",
			wantTitle:    "Frontend Developer",
			wantStrategy: "keyword-cluster",
		},
		{
			name:         "objective cluster wins over tooling cluster",
			lines:        []string{"Objective: become a data analyst", "Comfortable with Excel and SQL"},
			filename:     "resume.pdf",
			wantTitle:    "Data Analyst",
			wantStrategy: "keyword-cluster",
		},
		{
			name:         "filename fallback",
			lines:        []string{"Jane Doe", "A motivated professional"},
			filename:     "jane_data_analyst_resume.pdf",
			wantTitle:    "Data Analyst",
			wantStrategy: "filename",
		},
		{
			name:         "no title anywhere",
			lines:        []string{"Jane Doe", "A motivated professional"},
			filename:     "resume.pdf",
			wantTitle:    "",
			wantStrategy: "",
		},
		{
			name:     "line beyond exact window is ignored by exact strategy",
			lines:    append(manyLines(70), "Cloud Engineer"),
			filename: "resume.pdf",
			// the exact window ends at 60, but the pattern window reaches
			// further and no pattern covers "cloud engineer"
			wantTitle:    "",
			wantStrategy: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, strategy := DetectTitle(TitleInput{Lines: tt.lines, Filename: tt.filename}, strategies)
			if title != tt.wantTitle {
				t.Errorf("DetectTitle() title = %q, want %q", title, tt.wantTitle)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("DetectTitle() strategy = %q, want %q", strategy, tt.wantStrategy)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"software engineer", "Software Engineer"},
		{"SENIOR data ANALYST", "Senior Data Analyst"},
		{"devops engineer", "Devops Engineer"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func manyLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "filler line about professional accomplishments"
	}
	return lines
}
