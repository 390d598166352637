package ftp

import "testing"

func TestSplitCommand(t *testing.T) {
    cases := []struct {
        line, verb, arg string
    }{
        {"USER anonymous", "USER", "anonymous"},
        {"QUIT", "QUIT", ""},
        {"  PASS secret  ", "PASS", "secret"},
        {"", "", ""},
    }
    for _, c := range cases {
        verb, arg := splitCommand(c.line)
        if verb != c.verb || arg != c.arg {
            t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", c.line, verb, arg, c.verb, c.arg)
        }
    }
}
