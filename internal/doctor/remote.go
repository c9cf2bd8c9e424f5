package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/util"
	"github.com/rileyhilliard/issho/pkg/issho"
)

// Remote runs commands on the edge node. *issho.Session satisfies it.
type Remote interface {
	Exec(ctx context.Context, opts issho.ExecOptions, verb string, args ...string) (issho.Result, error)
}

func capture(ctx context.Context, r Remote, cmd string) (issho.Result, error) {
	return r.Exec(ctx, issho.ExecOptions{Mode: issho.ModeCapture}, cmd)
}

// ToolCheck verifies a command is on the remote PATH.
type ToolCheck struct {
	Remote Remote
	Tool   string

	// Needed names what the tool is used for, for the suggestion.
	Needed string
}

func (c *ToolCheck) Name() string     { return "remote_tool_" + c.Tool }
func (c *ToolCheck) Category() string { return CategoryRemote }

func (c *ToolCheck) Run(ctx context.Context) CheckResult {
	res, err := capture(ctx, c.Remote, "command -v "+util.ShellQuote(c.Tool))
	if err != nil {
		return fail(fmt.Sprintf("Can't look up %s", c.Tool), summarize(err))
	}
	path := strings.TrimSpace(res.Output)
	if !res.OK() || path == "" {
		return warn(fmt.Sprintf("%s isn't on the remote PATH", c.Tool),
			fmt.Sprintf("%s won't work until it is. Check the login shell's PATH on the edge node.", c.Needed))
	}
	return pass(fmt.Sprintf("%s: %s", c.Tool, path))
}

// TmpDirCheck verifies TMP_DIR exists and is writable; every staged
// transfer and Hive query goes through it.
type TmpDirCheck struct {
	Remote Remote
	Dir    string
}

func (c *TmpDirCheck) Name() string     { return "remote_tmp_dir" }
func (c *TmpDirCheck) Category() string { return CategoryRemote }

func (c *TmpDirCheck) Run(ctx context.Context) CheckResult {
	dir := util.ShellQuote(c.Dir)
	res, err := capture(ctx, c.Remote, fmt.Sprintf("test -d %s && test -w %s", dir, dir))
	if err != nil {
		return fail(fmt.Sprintf("Can't check %s", c.Dir), summarize(err))
	}
	if !res.OK() {
		return fail(fmt.Sprintf("TMP_DIR %s is missing or not writable", c.Dir),
			"Point TMP_DIR at a directory you can write on the edge node.")
	}
	return pass(fmt.Sprintf("TMP_DIR %s is writable", c.Dir))
}

// TicketCheck verifies a Kerberos ticket is held after bootstrap.
type TicketCheck struct {
	Remote Remote
}

func (c *TicketCheck) Name() string     { return "kerberos_ticket" }
func (c *TicketCheck) Category() string { return CategoryRemote }

func (c *TicketCheck) Run(ctx context.Context) CheckResult {
	res, err := capture(ctx, c.Remote, "klist -s")
	if err != nil {
		return fail("Can't run klist", summarize(err))
	}
	if !res.OK() {
		return warn("No valid Kerberos ticket",
			"Check the stored password with: issho config --yes --kinit --password-stdin")
	}
	return pass("Kerberos ticket is valid")
}

// NewRemoteChecks returns the checks run over an open session.
func NewRemoteChecks(r Remote, p config.Profile, kinit bool) []Check {
	hdfsTool := "hadoop"
	if fields := strings.Fields(p.HDFSCommand); len(fields) > 0 {
		hdfsTool = fields[0]
	}

	checks := []Check{
		&TmpDirCheck{Remote: r, Dir: p.TmpDir},
		&ToolCheck{Remote: r, Tool: hdfsTool, Needed: "HDFS transfers"},
		&ToolCheck{Remote: r, Tool: "beeline", Needed: "Hive queries"},
		&ToolCheck{Remote: r, Tool: "spark-submit", Needed: "Spark jobs"},
	}
	if kinit {
		checks = append(checks, &TicketCheck{Remote: r})
	}
	return checks
}

// ConnectResult reports whether the session to host came up. Remote checks
// only run after a passing connect.
func ConnectResult(host string, err error) CheckResult {
	r := pass("Connected to " + host)
	if err != nil {
		r = fail("Can't connect to "+host, summarize(err))
	}
	r.Name = "connect"
	r.Category = CategoryRemote
	return r
}
