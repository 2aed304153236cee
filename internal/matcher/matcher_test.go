package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var datasetNames = []string{
	"FDRS", "GO Operations", "GO Projects", "INFORM Risk",
	"OCAC", "OCAC Assessment Dates", "World Development Indicators",
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{name: "glob", pattern: "GO *", patternType: Glob, wantType: Glob},
		{name: "regex", pattern: "^OCAC", patternType: Regex, wantType: Regex},
		{name: "invalid regex", pattern: "[unclosed", patternType: Regex, wantErr: true},
		{name: "auto detects glob", pattern: "*Risk", patternType: Auto, wantType: Glob},
		{name: "auto detects regex", pattern: "^GO (Operations|Projects)$", patternType: Auto, wantType: Regex},
		{name: "unsupported type", pattern: "x", patternType: PatternType(9), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{pattern: "GO *", name: "GO Operations", want: true},
		{pattern: "go *", name: "GO Projects", want: true},
		{pattern: "GO *", name: "INFORM Risk", want: false},
		{pattern: "OCAC*", name: "OCAC Assessment Dates", want: true},
		{pattern: "OCA?", name: "OCAC", want: true},
		{pattern: "OCA?", name: "OCAC Assessment Dates", want: false},
		{pattern: "[FG]*", name: "FDRS", want: true},
		{pattern: "[!FG]*", name: "FDRS", want: false},
		{pattern: "red cross|crescent", name: "Kenya Red Cross Society", want: true},
		{pattern: "^kenya", name: "Kenya Red Cross Society", want: true},
		{pattern: "^kenya$", name: "Kenya Red Cross Society", want: false},
		{pattern: "*Society", name: "  Kenya Red Cross Society ", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			m, err := New(Auto, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.name))
		})
	}
}

func TestIsPattern(t *testing.T) {
	assert.True(t, IsPattern("GO *"))
	assert.True(t, IsPattern("^FDRS$"))
	assert.True(t, IsPattern("a|b"))
	assert.False(t, IsPattern("World Development Indicators"))
	assert.False(t, IsPattern("Red Cross Society (Kenya)"))
}

func TestGlobToRegex(t *testing.T) {
	tests := []struct {
		glob string
		want string
	}{
		{glob: "GO *", want: `^GO .*$`},
		{glob: "a?c", want: `^a.c$`},
		{glob: "[!ab]x", want: `^[^ab]x$`},
		{glob: "v1.0", want: `^v1\.0$`},
		{glob: `a\*b`, want: `^a\*b$`},
	}
	for _, tt := range tests {
		t.Run(tt.glob, func(t *testing.T) {
			assert.Equal(t, tt.want, GlobToRegex(tt.glob))
		})
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name          string
		requested     []string
		wantExpanded  []string
		wantUnmatched []string
	}{
		{
			name:         "plain names pass through",
			requested:    []string{"FDRS", "unknown"},
			wantExpanded: []string{"FDRS", "unknown"},
		},
		{
			name:         "glob expands in catalog order",
			requested:    []string{"GO *"},
			wantExpanded: []string{"GO Operations", "GO Projects"},
		},
		{
			name:         "duplicates collapse",
			requested:    []string{"ocac", "OCAC*"},
			wantExpanded: []string{"ocac", "OCAC Assessment Dates"},
		},
		{
			name:          "unmatched pattern",
			requested:     []string{"FDRS", "UNHCR*"},
			wantExpanded:  []string{"FDRS"},
			wantUnmatched: []string{"UNHCR*"},
		},
		{
			name:         "regex",
			requested:    []string{"^(FDRS|INFORM .*)$"},
			wantExpanded: []string{"FDRS", "INFORM Risk"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expanded, unmatched, err := Expand(tt.requested, datasetNames)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExpanded, expanded)
			assert.Equal(t, tt.wantUnmatched, unmatched)
		})
	}

	_, _, err := Expand([]string{"^(unclosed"}, datasetNames)
	assert.Error(t, err)
}
