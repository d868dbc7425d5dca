package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a   b\n\n\n\nc", "a b\n\nc"},
		{"  leading and trailing  ", "leading and trailing"},
		{"line one\nline two", "line one line two"},
		{"para\n  \t\n  next", "para\n\nnext"},
		{"tabs\t\tand\r\n\r\nCRLF", "tabs and\n\nCRLF"},
		{"", ""},
		{"\n\n\n", ""},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{
		"a   b\n\n\n\nc",
		" \n x \n\n y\t\tz \n",
		"unicode\u00a0space\u2003and\u2028separators\u3000\n\u00a0\n\n",
		strings.Repeat("word \n", 50),
		"no-whitespace",
	}
	for _, in := range inputs {
		once := CleanText(in)
		if twice := CleanText(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func FuzzCleanText_Idempotent(f *testing.F) {
	f.Add("a   b\n\n\n\nc")
	f.Add(" \n x \n\n y\t\tz \n")
	f.Add("nbsp\u00a0and\u2003em\u2029para\r\n\r\nend")
	f.Add("\xff\xfe invalid \n\n utf8")
	f.Fuzz(func(t *testing.T, in string) {
		once := CleanText(in)
		if twice := CleanText(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
		if strings.TrimSpace(once) != once {
			t.Fatalf("result not trimmed: %q", once)
		}
		if strings.Contains(once, "\n\n\n") {
			t.Fatalf("more than one blank line kept: %q", once)
		}
	})
}

func TestReadable_Gate(t *testing.T) {
	if _, err := Readable(Result{Text: "too short", Method: MethodBody}); !errors.Is(err, ErrNotEnoughContent) {
		t.Fatalf("expected ErrNotEnoughContent, got %v", err)
	}
	// 60 characters of text padded by whitespace that cleaning removes
	padded := "   " + strings.Repeat("x", 45) + "\n\n\n\n\n\n" + "y" + "     "
	if _, err := Readable(Result{Text: padded, Method: MethodBody}); !errors.Is(err, ErrNotEnoughContent) {
		t.Fatalf("gate must measure cleaned text, got %v", err)
	}
	text, err := Readable(Result{Text: longText, Method: MethodArticleTag})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != CleanText(longText) {
		t.Fatalf("text=%q", text)
	}
}
