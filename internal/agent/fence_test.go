package agent

import "testing"

func TestExtractFenced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "tagged fence",
			in:   "Here you go:\n```python\ndef f():\n    pass\n```\nDone.",
			want: "def f():\n    pass",
			ok:   true,
		},
		{
			name: "bare fence",
			in:   "```\nx = 1\n```",
			want: "x = 1",
			ok:   true,
		},
		{
			name: "no fence returns body",
			in:   "def f():\n    pass\n",
			want: "def f():\n    pass",
			ok:   true,
		},
		{
			name: "unterminated fence",
			in:   "```python\nx = 1\n",
			want: "x = 1",
			ok:   true,
		},
		{
			name: "empty response",
			in:   "   \n",
			want: "",
			ok:   false,
		},
		{
			name: "first fence wins",
			in:   "```\nfirst\n```\n```\nsecond\n```",
			want: "first",
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractFenced(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
