// Package budget estimates how much article text fits a model's context
// window, so prompts can be cut before the endpoint rejects them.
package budget

import (
    "math"
    "strings"
    "unicode/utf8"
)

// charsPerToken is a conservative average for English prose.
const charsPerToken = 4

// EstimateTokens returns the estimated token count of s. It is at least 1
// for any non-empty string.
func EstimateTokens(s string) int {
    n := utf8.RuneCountInString(s)
    if n == 0 {
        return 0
    }
    return int(math.Ceil(float64(n) / charsPerToken))
}

// ContextTokens returns the context window of a model. Unknown models get a
// conservative 8192.
func ContextTokens(model string) int {
    name := strings.ToLower(strings.TrimSpace(model))
    if i := strings.LastIndex(name, "/"); i >= 0 && knownContext[name] == 0 {
        name = name[i+1:]
    }
    if v, ok := knownContext[name]; ok {
        return v
    }
    for _, p := range prefixContext {
        if strings.HasPrefix(name, p.prefix) {
            return p.tokens
        }
    }
    switch {
    case strings.HasSuffix(name, "1m"):
        return 1_000_000
    case strings.HasSuffix(name, "200k"):
        return 200_000
    case strings.HasSuffix(name, "128k"):
        return 128_000
    case strings.HasSuffix(name, "32k"):
        return 32_768
    }
    return 8192
}

// Headroom is subtracted from the window to absorb tokenizer and message
// framing overhead: 5% of the window, at least 256 tokens.
func Headroom(model string) int {
    dyn := (ContextTokens(model)*5 + 99) / 100
    if dyn < 256 {
        return 256
    }
    return dyn
}

// MaxInputChars returns how many characters of article text fit next to
// overhead (the fixed prompt text) while reserving reservedOutput tokens for
// the answer. The result is never negative.
func MaxInputChars(model string, reservedOutput int, overhead string) int {
    if reservedOutput < 0 {
        reservedOutput = 0
    }
    left := ContextTokens(model) - Headroom(model) - reservedOutput - EstimateTokens(overhead)
    if left <= 0 {
        return 0
    }
    return left * charsPerToken
}

var knownContext = map[string]int{
    "gemini-1.5-flash": 1_000_000,
    "gemini-1.5-pro":   2_000_000,
    "gemini-2.0-flash": 1_000_000,
    "gpt-4o":           128_000,
    "gpt-4o-mini":      128_000,
    "gpt-4-turbo":      128_000,
    "gpt-3.5-turbo":    16_384,
    "llama-3":          8_192,
    "llama-3.1":        128_000,
    "gpt-oss-20b":      4_096,
}

// prefixContext covers model families whose names carry version or size
// suffixes, e.g. "gemini-1.5-flash-latest" or "qwen2.5-7b-instruct".
var prefixContext = []struct {
    prefix string
    tokens int
}{
    {"gemini-", 1_000_000},
    {"gpt-4o", 128_000},
    {"llama-3.1", 128_000},
    {"llama-3.2", 128_000},
    {"qwen2.5", 32_768},
    {"mistral", 32_768},
}
