package sshpot

import (
    "fmt"
    "strings"
)

// shellResponse dispatches on the first whitespace-separated token of a
// command line (case-insensitively) and returns the canned output a real
// shell would have printed, per spec §4.6's command table. Unknown
// commands get bash's "command not found" — enough to make unattended
// bot scripts believe they're making progress.
func shellResponse(rawLine string) string {
    trimmed := strings.TrimSpace(rawLine)
    fields := strings.Fields(trimmed)
    if len(fields) == 0 {
        return ""
    }

    cmd := strings.ToLower(fields[0])
    argLine := strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))

    switch cmd {
    case "whoami":
        return "root\r\n"
    case "id":
        return "uid=0(root) gid=0(root) groups=0(root)\r\n"
    case "pwd":
        return "/root\r\n"
    case "hostname":
        return "honeypot\r\n"
    case "uname":
        if strings.Contains(argLine, "-a") {
            return "Linux honeypot 5.4.0-91-generic #102-Ubuntu SMP x86_64 GNU/Linux\r\n"
        }
        return "Linux\r\n"
    case "uptime":
        return uptimeLine
    case "w":
        return uptimeLine + wUsersTable
    case "ls":
        return lsOutput(argLine)
    case "cat":
        return catOutput(argLine)
    case "ps":
        return psTable
    case "ifconfig":
        return ifconfigOutput
    case "ip":
        if strings.HasPrefix(strings.ToLower(argLine), "addr") {
            return ifconfigOutput
        }
        return "bash: ip: command not found\r\n"
    case "cd":
        return ""
    case "echo":
        return argLine + "\r\n"
    case "history":
        return historyTable
    case "env", "printenv":
        return envTable
    case "help":
        return helpText
    case "exit", "quit", "logout":
        return ""
    default:
        return "bash: " + fields[0] + ": command not found\r\n"
    }
}

const (
    uptimeLine  = " 12:34:56 up 42 days,  3:17,  1 user,  load average: 0.08, 0.05, 0.01\r\n"
    wUsersTable = "USER     TTY      FROM             LOGIN@   IDLE   JCPU   PCPU WHAT\r\n" +
        "root     pts/0    10.0.0.1         12:30    0.00s  0.04s  0.00s w\r\n"
    psTable = "  PID TTY          TIME CMD\r\n" +
        "    1 ?        00:00:01 systemd\r\n" +
        "  842 ?        00:00:00 sshd\r\n" +
        "  901 pts/0    00:00:00 bash\r\n"
    ifconfigOutput = "eth0: flags=4163<UP,BROADCAST,RUNNING,MULTICAST>  mtu 1500\r\n" +
        "        inet 10.0.0.4  netmask 255.255.255.0  broadcast 10.0.0.255\r\n" +
        "        ether 02:42:ac:11:00:04  txqueuelen 0  (Ethernet)\r\n" +
        "lo: flags=73<UP,LOOPBACK,RUNNING>  mtu 65536\r\n" +
        "        inet 127.0.0.1  netmask 255.0.0.0\r\n"
    historyTable = "    1  ls\r\n    2  whoami\r\n    3  history\r\n"
    envTable      = "HOME=/root\r\nSHELL=/bin/bash\r\nUSER=root\r\n" +
        "PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin\r\n"
    helpText = "GNU bash, version 5.0.17(1)-release (x86_64-pc-linux-gnu)\r\n" +
        "These shell commands are defined internally.\r\n"
    etcListing = "passwd\tgroup\thosts\tshadow\tssh\tcrontab\tresolv.conf\r\n"
    longListing = "total 32\r\n" +
        "drwx------  4 root root 4096 Jan  1 00:00 .\r\n" +
        "drwxr-xr-x 20 root root 4096 Jan  1 00:00 ..\r\n" +
        "-rw-r--r--  1 root root  570 Jan  1 00:00 .bashrc\r\n" +
        "drwxr-xr-x  2 root root 4096 Jan  1 00:00 .ssh\r\n"
    passwdFile = "root:x:0:0:root:/root:/bin/bash\r\n" +
        "daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin\r\n" +
        "bin:x:2:2:bin:/bin:/usr/sbin/nologin\r\n" +
        "sys:x:3:3:sys:/dev:/usr/sbin/nologin\r\n"
)

func lsOutput(argLine string) string {
    lower := strings.ToLower(argLine)
    switch {
    case strings.Contains(lower, "/etc"):
        return etcListing
    case strings.Contains(lower, "-la") || strings.Contains(lower, "-al"):
        return longListing
    default:
        return "snap\r\n"
    }
}

func catOutput(argLine string) string {
    switch {
    case strings.Contains(argLine, "/etc/shadow"):
        return "cat: /etc/shadow: Permission denied\r\n"
    case strings.Contains(argLine, "/etc/passwd"):
        return passwdFile
    case argLine == "":
        return ""
    default:
        return fmt.Sprintf("cat: %s: No such file or directory\r\n", argLine)
    }
}
