package extract

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/outparse/providers/observability"
	"github.com/leofalp/outparse/providers/observability/slogobs"
)

func TestFindFence(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lang   string
		want   string
		wantOK bool
	}{
		{
			name:   "python fence inside prose",
			text:   "intro ```python\nprint(1)\n``` outro",
			lang:   "python",
			want:   "print(1)\n",
			wantOK: true,
		},
		{
			name:   "any language",
			text:   "```json\n{\"a\": 1}\n```",
			want:   "{\"a\": 1}\n",
			wantOK: true,
		},
		{
			name:   "untagged fence",
			text:   "```\nplain\n```",
			want:   "plain\n",
			wantOK: true,
		},
		{
			name:   "first fence wins",
			text:   "```python\none\n```\n```python\ntwo\n```",
			lang:   "python",
			want:   "one\n",
			wantOK: true,
		},
		{
			name:   "language must match",
			text:   "```js\nlet x\n```",
			lang:   "python",
			wantOK: false,
		},
		{
			name:   "language with regex metacharacters",
			text:   "```c++\nint x;\n```",
			lang:   "c++",
			want:   "int x;\n",
			wantOK: true,
		},
		{
			name:   "unclosed fence",
			text:   "```python\nprint(1)\n",
			lang:   "python",
			wantOK: false,
		},
		{
			name:   "no fence",
			text:   "just text",
			wantOK: false,
		},
		{
			name:   "first line indentation is consumed",
			text:   "```python\n    indented()\n    more()\n```",
			lang:   "python",
			want:   "indented()\n    more()\n",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindFence(tt.text, tt.lang)
			if ok != tt.wantOK {
				t.Fatalf("FindFence() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("FindFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_ExtractCode_Lenient(t *testing.T) {
	t.Run("fenced", func(t *testing.T) {
		rec := newRecorder()
		p := New(WithObserver(rec))
		got := p.ExtractCode(context.Background(), "intro ```python\nprint(1)\n``` outro", "python")
		if got != "print(1)\n" {
			t.Errorf("ExtractCode() = %q, want %q", got, "print(1)\n")
		}
		if n := len(rec.at("warn")); n != 0 {
			t.Errorf("ExtractCode() logged %d warnings, want 0", n)
		}
	})

	t.Run("missing fence returns empty and logs", func(t *testing.T) {
		rec := newRecorder()
		p := New(WithObserver(rec))
		got := p.ExtractCode(context.Background(), "def main(): pass", "")
		if got != "" {
			t.Errorf("ExtractCode() = %q, want empty", got)
		}
		warnings := rec.at("warn")
		if len(warnings) != 1 {
			t.Fatalf("ExtractCode() logged %d warnings, want 1", len(warnings))
		}
		attrs := warnings[0].attrs
		if attrs[observability.AttrReason] != "not_found" {
			t.Errorf("reason = %v, want not_found", attrs[observability.AttrReason])
		}
		if attrs[observability.AttrComponent] != ComponentFence {
			t.Errorf("component = %v, want %s", attrs[observability.AttrComponent], ComponentFence)
		}
		if attrs[observability.AttrFallback] != "empty" {
			t.Errorf("fallback = %v, want empty", attrs[observability.AttrFallback])
		}
		if rec.counter(observability.MetricExtractFailures) != 1 {
			t.Errorf("failure counter = %d, want 1", rec.counter(observability.MetricExtractFailures))
		}
	})
}

func TestParser_ExtractSectionCode_Strict(t *testing.T) {
	doc := "## Code Review Result\nLBTM\n## Rewrite Code: game.py\n```python\ndef move():\n    pass\n```\n"

	tests := []struct {
		name     string
		section  string
		text     string
		lang     string
		want     string
		wantWarn bool
	}{
		{
			name: "fenced text",
			text: "```python\nx = 1\n```",
			lang: "python",
			want: "x = 1\n",
		},
		{
			name:     "unfenced text passes through",
			text:     "x = 1",
			lang:     "python",
			want:     "x = 1",
			wantWarn: true,
		},
		{
			name:    "narrowed to a section",
			section: "Rewrite Code",
			text:    doc,
			lang:    "python",
			want:    "def move():\n    pass\n",
		},
		{
			name:     "section without fence passes its body through",
			section:  "Code Review Result",
			text:     doc,
			lang:     "python",
			want:     "LBTM",
			wantWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			p := New(WithObserver(rec))
			got := p.ExtractSectionCode(context.Background(), tt.section, tt.text, tt.lang)
			if got != tt.want {
				t.Errorf("ExtractSectionCode() = %q, want %q", got, tt.want)
			}
			warned := len(rec.at("warn")) > 0
			if warned != tt.wantWarn {
				t.Errorf("ExtractSectionCode() warned = %v, want %v", warned, tt.wantWarn)
			}
		})
	}
}

func TestExtractSectionCode_Idempotent(t *testing.T) {
	inputs := []string{
		"intro ```python\nprint(1)\n``` outro",
		"```\nplain\n```",
		"no fence at all",
	}
	for _, in := range inputs {
		once := ExtractSectionCode("", in, "")
		twice := ExtractSectionCode("", once, "")
		if once != twice {
			t.Errorf("ExtractSectionCode not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestParser_ExtractCode_SlogOutput(t *testing.T) {
	var buf bytes.Buffer
	obs := slogobs.New(
		slogobs.WithOutput(&buf),
		slogobs.WithFormat(slogobs.FormatJSON),
		slogobs.WithLevel(slog.LevelWarn),
	)
	p := New(WithObserver(obs))

	if got := p.ExtractCode(context.Background(), "no code here", "go"); got != "" {
		t.Fatalf("ExtractCode() = %q, want empty", got)
	}

	out := buf.String()
	for _, want := range []string{`"msg":"Extraction failed"`, `"extract.reason":"not_found"`, `"extract.language":"go"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
	if got := obs.CounterValue(observability.MetricExtractFailures); got != 1 {
		t.Errorf("CounterValue() = %d, want 1", got)
	}
}

func TestParser_ObserverFromContext(t *testing.T) {
	fallback := newRecorder()
	scoped := newRecorder()
	p := New(WithObserver(fallback))

	ctx := observability.ContextWithObserver(context.Background(), scoped)
	p.ExtractCode(ctx, "nothing", "")

	if len(scoped.at("warn")) != 1 {
		t.Errorf("context observer got %d warnings, want 1", len(scoped.at("warn")))
	}
	if len(fallback.at("warn")) != 0 {
		t.Errorf("parser observer got %d warnings, want 0", len(fallback.at("warn")))
	}
}
