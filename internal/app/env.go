package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Variables already set to a non-empty value before the call
// are left alone; among the files, later ones override earlier ones.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    preset := map[string]bool{}
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        vals, err := parseEnvFile(p)
        if err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return err
        }
        for _, kv := range vals {
            if _, seen := preset[kv[0]]; !seen {
                preset[kv[0]] = os.Getenv(kv[0]) != ""
            }
            if preset[kv[0]] {
                continue
            }
            _ = os.Setenv(kv[0], kv[1])
        }
    }
    return nil
}

// parseEnvFile returns the file's assignments in order. Lines may start with
// "export ". Double-quoted values understand Go escapes; single-quoted values
// are literal; unquoted values end at " #".
func parseEnvFile(path string) ([][2]string, error) {
    f, err := os.Open(path)
    if err != nil {
        return nil, err
    }
    defer f.Close()

    var out [][2]string
    scanner := bufio.NewScanner(f)
    lineNo := 0
    for scanner.Scan() {
        lineNo++
        line := strings.TrimSpace(scanner.Text())
        if line == "" || strings.HasPrefix(line, "#") {
            continue
        }
        line = strings.TrimPrefix(line, "export ")
        eq := strings.IndexByte(line, '=')
        if eq <= 0 {
            continue
        }
        key := strings.TrimSpace(line[:eq])
        val := strings.TrimSpace(line[eq+1:])
        switch {
        case len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"':
            uq, err := strconv.Unquote(val)
            if err != nil {
                return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
            }
            val = uq
        case len(val) >= 2 && val[0] == '\'' && val[len(val)-1] == '\'':
            val = val[1 : len(val)-1]
        default:
            if i := strings.Index(val, " #"); i >= 0 {
                val = strings.TrimSpace(val[:i])
            }
        }
        out = append(out, [2]string{key, val})
    }
    return out, scanner.Err()
}
