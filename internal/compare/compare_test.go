package compare

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		target string
		typed  string
		want   []CharState
	}{
		{
			name:   "nothing typed yet",
			target: "go",
			typed:  "",
			want:   []CharState{CursorPending, Untyped},
		},
		{
			name:   "partial correct prefix",
			target: "the quick fox",
			typed:  "the",
			want: []CharState{
				Correct, Correct, Correct, CursorPending,
				Untyped, Untyped, Untyped, Untyped, Untyped,
				Untyped, Untyped, Untyped, Untyped,
			},
		},
		{
			name:   "typo marks index incorrect",
			target: "cat",
			typed:  "cut",
			want:   []CharState{Correct, Incorrect, Correct},
		},
		{
			name:   "fully typed has no cursor",
			target: "hi",
			typed:  "hi",
			want:   []CharState{Correct, Correct},
		},
		{
			name:   "input longer than target still classifies every slot",
			target: "ab",
			typed:  "abcd",
			want:   []CharState{Correct, Correct},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.target, tc.typed)
			if len(got) != len(tc.want) {
				t.Fatalf("len: got %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("index %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestClassify_ExactlyOneCursor(t *testing.T) {
	target := "typing duel"
	for k := 0; k <= len(target); k++ {
		states := Classify(target, target[:k])
		cursors := 0
		for _, s := range states {
			if s == CursorPending {
				cursors++
			}
		}
		want := 1
		if k == len(target) {
			want = 0
		}
		if cursors != want {
			t.Fatalf("typed %d chars: got %d cursors, want %d", k, cursors, want)
		}
	}
}

func TestClampInput(t *testing.T) {
	if got := ClampInput("abc", "abcdef"); got != "abc" {
		t.Fatalf("got %q, want %q", got, "abc")
	}
	if got := ClampInput("abc", "ab"); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
	if got := ClampInput("héllo", "héllox"); got != "héllo" {
		t.Fatalf("got %q, want %q", got, "héllo")
	}
}
