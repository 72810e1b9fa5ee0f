package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/outparse/core/extract"
	"github.com/leofalp/outparse/internal/config"
)

var envKeys = []string{
	config.EnvLogLevel,
	config.EnvLogFormat,
	config.EnvContentTag,
	config.EnvStripQuotes,
	config.EnvNormalizeHTML,
	config.EnvWorkers,
	config.EnvLogLevelFallback,
	config.EnvLogFormatFallback,
}

// run executes the root command with stdin and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-format", "json", "--log-level", "info"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type documentJSON struct {
	ID       string            `json:"id"`
	Format   string            `json:"format"`
	Fields   map[string]any    `json:"fields"`
	Failures map[string]string `json:"failures"`
}

func TestSectionsCommand(t *testing.T) {
	input := "## Title:\nbody one\n## Other\nbody two"

	t.Run("text", func(t *testing.T) {
		out, _, err := run(t, input, "sections")
		require.NoError(t, err)
		assert.Equal(t, "[Title]\nbody one\n\n[Other]\nbody two\n\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, input, "sections", "--json")
		require.NoError(t, err)

		var sections []extract.Section
		require.NoError(t, json.Unmarshal([]byte(out), &sections))
		assert.Equal(t, []extract.Section{
			{Title: "Title", Body: "body one"},
			{Title: "Other", Body: "body two"},
		}, sections)
	})

	t.Run("file argument", func(t *testing.T) {
		path := writeFile(t, "response.md", input)
		out, _, err := run(t, "", "sections", path)
		require.NoError(t, err)
		assert.Contains(t, out, "[Other]\nbody two")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, "", "sections", filepath.Join(t.TempDir(), "nope.md"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read input")
	})
}

func TestCodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		args     []string
		want     string
		wantErr  bool
		wantWarn bool
	}{
		{
			name:  "lenient with language",
			input: "Here:\n```python\nprint(1)\n```\n",
			args:  []string{"--lang", "python"},
			want:  "print(1)\n",
		},
		{
			name:     "lenient without fence fails",
			input:    "print(1)",
			wantErr:  true,
			wantWarn: true,
		},
		{
			name:     "strict without fence passes text through",
			input:    "x = 1",
			args:     []string{"--strict"},
			want:     "x = 1",
			wantWarn: true,
		},
		{
			name:  "section narrows the search",
			input: "## Plan\n```text\nplan\n```\n## Code\n```go\nfmt.Println()\n```\n",
			args:  []string{"--section", "Code"},
			want:  "fmt.Println()\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := run(t, tt.input, append([]string{"code"}, tt.args...)...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
			}
			if tt.wantWarn {
				assert.Contains(t, stderr, `"msg":"Extraction failed"`)
			} else {
				assert.Empty(t, stderr)
			}
		})
	}
}

func TestStructureCommand(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, _, err := run(t, `Result: ["a", 'b', 1, None]`, "structure")
		require.NoError(t, err)

		var got []any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, []any{"a", "b", float64(1), nil}, got)
	})

	t.Run("mapping", func(t *testing.T) {
		out, _, err := run(t, `{"files": ["a.py"], "done": True}`, "structure", "--kind", "mapping")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, map[string]any{"files": []any{"a.py"}, "done": true}, got)
	})

	t.Run("no literal", func(t *testing.T) {
		_, stderr, err := run(t, "nothing here", "structure")
		require.Error(t, err)
		assert.ErrorIs(t, err, extract.ErrNotFound)
		assert.Contains(t, stderr, `"extract.reason":"not_found"`)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := run(t, "[1]", "structure", "--kind", "tuple")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--kind must be list or mapping")
	})
}

func TestUnwrapCommand(t *testing.T) {
	t.Run("default tag", func(t *testing.T) {
		out, _, err := run(t, "noise [CONTENT]\n{\"a\": 1}\n[/CONTENT] noise", "unwrap")
		require.NoError(t, err)
		assert.Equal(t, "{\"a\": 1}\n", out)
	})

	t.Run("custom tag", func(t *testing.T) {
		out, _, err := run(t, "[PLAN] step one [/PLAN]", "unwrap", "--tag", "PLAN")
		require.NoError(t, err)
		assert.Equal(t, "step one\n", out)
	})

	t.Run("missing tag", func(t *testing.T) {
		_, stderr, err := run(t, "[CONTENT] unterminated", "unwrap")
		require.Error(t, err)
		assert.ErrorIs(t, err, extract.ErrNotFound)
		assert.Contains(t, stderr, `"msg":"Tagged content missing"`)
	})
}

func TestParseCommand(t *testing.T) {
	review := "## Review\n['naming is fine']\n## LGTM\nLGTM\n## Actions\nnone\n"

	t.Run("builtin schema", func(t *testing.T) {
		out, _, err := run(t, review, "parse", "--schema", "code-review")
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, extract.FormatSections, doc.Format)
		assert.Equal(t, map[string]any{
			"Review":  []any{"naming is fine"},
			"LGTM":    "LGTM",
			"Actions": "none",
		}, doc.Fields)
		assert.Empty(t, doc.Failures)
	})

	t.Run("field flags", func(t *testing.T) {
		out, _, err := run(t, "## Task list\n[\"a.py\", \"b.py\"]\n", "parse",
			"-f", "Task list=List[str]",
			"-f", "Anything UNCLEAR",
		)
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, []any{"a.py", "b.py"}, doc.Fields["Task list"])
		assert.Contains(t, doc.Failures, "Anything UNCLEAR")
	})

	t.Run("schema file", func(t *testing.T) {
		path := writeFile(t, "notes.yaml", "name: notes\nfields:\n  - name: Notes\n    kind: List[str]\n")
		out, _, err := run(t, "## Notes\n- one\n- two\n", "parse", "--schema", path)
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, []any{"- one", "- two"}, doc.Fields["Notes"])
	})

	errorTests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown schema", args: []string{"--schema", "nope"}, want: "unsupported schema file extension"},
		{name: "empty field name", args: []string{"-f", "=str"}, want: "empty name"},
		{name: "unknown kind", args: []string{"-f", "Notes=List[int]"}, want: "invalid --field"},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, review, append([]string{"parse"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFieldFlag(t *testing.T) {
	tests := []struct {
		decl string
		want extract.FieldSpec
	}{
		{decl: "Notes", want: extract.FieldSpec{Name: "Notes", Kind: extract.KindString}},
		{decl: "Logic Analysis=List[List[str]]", want: extract.FieldSpec{Name: "Logic Analysis", Kind: extract.KindListOfList}},
		{decl: "a=b=pair_list", want: extract.FieldSpec{Name: "a=b", Kind: extract.KindPairList}},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			got, err := parseFieldFlag(tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBatchCommand(t *testing.T) {
	good := writeFile(t, "good.md", "## LGTM\nLGTM\n## Review\n['ok']\n")
	fenced := writeFile(t, "fenced.md", "## Review\n```python\n['one', 'two']\n```\n")
	missing := filepath.Join(t.TempDir(), "missing.md")

	out, stderr, err := run(t, "", "batch", "--schema", "code-review", "--workers", "2", good, missing, fenced)
	require.NoError(t, err)

	var results []struct {
		File     string        `json:"file"`
		Document *documentJSON `json:"document"`
		Error    string        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].File)
	require.NotNil(t, results[0].Document)
	assert.Equal(t, "LGTM", results[0].Document.Fields["LGTM"])
	assert.Contains(t, results[0].Document.Failures, "Actions")

	assert.Equal(t, missing, results[1].File)
	assert.Nil(t, results[1].Document)
	assert.NotEmpty(t, results[1].Error)

	assert.Equal(t, fenced, results[2].File)
	require.NotNil(t, results[2].Document)
	assert.Equal(t, []any{"one", "two"}, results[2].Document.Fields["Review"])

	assert.Contains(t, stderr, `"msg":"Batch parsed"`)
	assert.Contains(t, stderr, `"batch.failed":1`)
	assert.Contains(t, stderr, `"batch.workers":2`)
	assert.Contains(t, stderr, `"cli.command":"batch"`)
}

func TestBatchCommand_InvalidWorkers(t *testing.T) {
	path := writeFile(t, "a.md", "## A\nx\n")
	_, _, err := run(t, "", "batch", "--workers", "0", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--workers must be at least 1")
}

func TestVerdictCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		args    []string
		want    string
		wantErr string
	}{
		{
			name:  "lgtm",
			input: "## Code Review Result\nLGTM\n",
			want:  "LGTM\n",
		},
		{
			name:  "lbtm",
			input: "## Code Review Result\nLBTM, please rewrite\n",
			want:  "LBTM\n",
		},
		{
			name:  "no result section",
			input: "LGTM overall",
			want:  "unknown\n",
		},
		{
			name:  "recipient",
			input: "## Send To: Engineer\n",
			args:  []string{"--recipient"},
			want:  "Engineer\n",
		},
		{
			name:    "recipient missing",
			input:   "nobody",
			args:    []string{"--recipient"},
			wantErr: "no recipient found",
		},
		{
			name:  "rewrite",
			input: "## Rewrite\n```python\ndef f():\n    return 1\n```\n",
			args:  []string{"--rewrite", "--lang", "python"},
			want:  "def f():\n    return 1\n",
		},
		{
			name:    "exclusive flags",
			input:   "",
			args:    []string{"--rewrite", "--recipient"},
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.input, append([]string{"verdict"}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSettings(t *testing.T) {
	wrapped := "[WRAP]\n## A\nvalue\n[/WRAP]"

	t.Run("env file", func(t *testing.T) {
		env := writeFile(t, "test.env", config.EnvContentTag+"=WRAP\n")
		out, _, err := run(t, wrapped, "--env-file", env, "parse", "-f", "A")
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "value", doc.Fields["A"])
	})

	t.Run("flag overrides env file", func(t *testing.T) {
		env := writeFile(t, "test.env", config.EnvContentTag+"=OTHER\n")
		out, _, err := run(t, wrapped, "--env-file", env, "--content-tag", "WRAP", "parse", "-f", "A")
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "value", doc.Fields["A"])
	})

	t.Run("strip quotes", func(t *testing.T) {
		out, _, err := run(t, "## Name\nname = \"outparse\"\n", "--strip-quotes", "parse", "-f", "Name")
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "outparse", doc.Fields["Name"])
	})

	t.Run("html", func(t *testing.T) {
		out, _, err := run(t, "<h2>Goal</h2><p>ship it</p>", "--html", "parse", "-f", "Goal")
		require.NoError(t, err)

		var doc documentJSON
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "ship it", doc.Fields["Goal"])
	})

	t.Run("missing env file", func(t *testing.T) {
		_, _, err := run(t, "", "--env-file", filepath.Join(t.TempDir(), "none.env"), "sections")
		require.Error(t, err)
	})
}
