// Command xarexec_fuse is the userspace helper a XAR's shebang line
// points at. Given the XAR's own path as its first non-flag argument,
// it parses the XAR header, mounts the embedded squashfs image if
// needed, and execs the bootstrap script the header names.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/facebookincubator/xar/logger"
	"github.com/facebookincubator/xar/xarheader"
	"github.com/facebookincubator/xar/xarmount"

	"golang.org/x/sys/unix"
)

type options struct {
	MountOnly bool `short:"m" description:"mount and print mountpoint, do not execute payload"`
	PrintOnly bool `short:"n" description:"print the mountpoint but don't mount"`
	Help      bool `short:"h" description:"print this help message"`
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: xarexec_fuse [-m|-n] /path/to/file.xar [args...]")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "     -m: mount and print mountpoint, do not execute payload")
	fmt.Fprintln(os.Stderr, "     -n: print the mountpoint but don't mount")
}

func main() {
	_ = logger.SimpleSetup()

	now := time.Now()
	launchTimestamp := float64(now.Unix()) + float64(now.Nanosecond())/1e9
	os.Setenv("XAREXEC_LAUNCH_TIMESTAMP", fmt.Sprintf("%f", launchTimestamp))

	if unix.Getuid() != unix.Geteuid() {
		fmt.Fprintln(os.Stderr, "FATAL xarexec_fuse: getuid() != geteuid()")
		os.Exit(1)
	}

	oldUmask := unix.Umask(0022)
	xarmount.SetSavedUmask(oldUmask)

	xarPath, extraArgs, mode, ok := parseArgs(os.Args[1:])
	if !ok {
		os.Exit(1)
	}
	if xarPath == "" {
		// -h was handled inside parseArgs.
		os.Exit(0)
	}

	defer func() {
		if r := recover(); r != nil {
			os.Exit(1)
		}
	}()

	header, err := xarheader.ParseFile(xarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL xarexec_fuse: %s\n", err)
		os.Exit(1)
	}

	sup := xarmount.New(xarPath, header, mode, extraArgs)
	sup.Run()
}

// parseArgs implements the -m/-n/-h option parsing of §6, stopping at
// the first non-flag argument (the XAR path) and passing everything
// after it through verbatim via PassAfterNonOption.
func parseArgs(args []string) (xarPath string, extraArgs []string, mode xarmount.Mode, ok bool) {
	var opts options
	parser := flags.NewParser(&opts, flags.PassAfterNonOption)
	parser.Usage = "[-m|-n] /path/to/file.xar [args...]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		usage()
		return "", nil, xarmount.Exec, false
	}

	if opts.Help {
		usage()
		return "", nil, xarmount.Exec, true
	}

	if len(rest) == 0 {
		usage()
		return "", nil, xarmount.Exec, false
	}

	mode = xarmount.Exec
	switch {
	case opts.MountOnly:
		mode = xarmount.MountOnly
	case opts.PrintOnly:
		mode = xarmount.PrintOnly
	}

	return rest[0], rest[1:], mode, true
}
