package budget

import (
    "strings"
    "testing"
)

func TestEstimateTokens(t *testing.T) {
    cases := []struct {
        in   string
        want int
    }{
        {"", 0},
        {"a", 1},
        {"abcd", 1},
        {"abcde", 2},
        {"ääää", 1}, // counted in characters, not bytes
        {strings.Repeat("x", 400), 100},
    }
    for _, c := range cases {
        if got := EstimateTokens(c.in); got != c.want {
            t.Fatalf("EstimateTokens(%q) = %d, want %d", c.in, got, c.want)
        }
    }
}

func TestContextTokens(t *testing.T) {
    cases := map[string]int{
        "":                        8192,
        "unknown-model":           8192,
        "gpt-4o":                  128_000,
        "GPT-3.5-Turbo":           16_384,
        "gemini-1.5-flash-latest": 1_000_000,
        "openai/gpt-oss-20b":      4_096,
        "qwen2.5-7b-instruct":     32_768,
        "custom-200k":             200_000,
    }
    for model, want := range cases {
        if got := ContextTokens(model); got != want {
            t.Fatalf("ContextTokens(%q) = %d, want %d", model, got, want)
        }
    }
}

func TestHeadroom(t *testing.T) {
    if got := Headroom("gpt-oss-20b"); got != 256 {
        t.Fatalf("small windows use the floor, got %d", got)
    }
    if got := Headroom("gpt-4o"); got != 6400 {
        t.Fatalf("Headroom(gpt-4o) = %d, want 6400", got)
    }
}

func TestMaxInputChars(t *testing.T) {
    // 4096 - 256 headroom - 1000 output - 25 overhead = 2815 tokens.
    overhead := strings.Repeat("p", 100)
    if got := MaxInputChars("gpt-oss-20b", 1000, overhead); got != 2815*4 {
        t.Fatalf("MaxInputChars = %d, want %d", got, 2815*4)
    }
    if got := MaxInputChars("gpt-oss-20b", 10_000, overhead); got != 0 {
        t.Fatalf("overfull budget should be 0, got %d", got)
    }
    if got := MaxInputChars("gpt-4o", -5, ""); got != (128_000-6400)*4 {
        t.Fatalf("negative reservation treated as zero, got %d", got)
    }
}
