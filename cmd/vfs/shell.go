package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	isatty "github.com/mattn/go-isatty"
	"github.com/sisatech/tablewriter"

	"github.com/vorteil/vfsdisk/pkg/vfs"
	"github.com/vorteil/vfsdisk/pkg/vio"
)

// command describes one shell command: how many arguments it takes, a short
// usage blurb, and the handler that runs it. help's text and the dispatch
// table are generated from the same source so they cannot drift apart.
type command struct {
	usage string
	help  string
	nargs int // exact argument count required; -1 means 0 or 1
	run   func(fs *vfs.FileSystem, args []string) error
}

var commands map[string]command

// commandOrder fixes the display order of commands in help output; map
// iteration order is randomized, and the surface here is small and static
// enough not to need sorting at render time.
var commandOrder = []string{
	"ls", "cd", "pwd", "mkdir", "rmdir", "rm", "ln", "cp-to", "cp-from",
	"append", "truncate", "df",
}

func init() {
	commands = map[string]command{
		"ls": {
			usage: "ls [path]", help: "list directory or describe a file", nargs: -1,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdLs(fs, args) },
		},
		"cd": {
			usage: "cd [path]", help: "set current working directory", nargs: -1,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdCd(fs, args) },
		},
		"pwd": {
			usage: "pwd", help: "print current working directory", nargs: 0,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdPwd(fs) },
		},
		"mkdir": {
			usage: "mkdir <path>", help: "create a directory", nargs: 1,
			run: func(fs *vfs.FileSystem, args []string) error { return fs.Mkdir(args[0]) },
		},
		"rmdir": {
			usage: "rmdir <path>", help: "remove an empty directory", nargs: 1,
			run: func(fs *vfs.FileSystem, args []string) error { return fs.Rmdir(args[0]) },
		},
		"rm": {
			usage: "rm <path>", help: "unlink a file", nargs: 1,
			run: func(fs *vfs.FileSystem, args []string) error { return fs.Rm(args[0]) },
		},
		"ln": {
			usage: "ln <target> <link>", help: "create a hard link to a file", nargs: 2,
			run: func(fs *vfs.FileSystem, args []string) error { return fs.Ln(args[0], args[1]) },
		},
		"cp-to": {
			usage: "cp-to <host-path> <vdisk-path>", help: "import a host file", nargs: 2,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdCpTo(fs, args) },
		},
		"cp-from": {
			usage: "cp-from <vdisk-path> <host-path>", help: "export a file to the host", nargs: 2,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdCpFrom(fs, args) },
		},
		"append": {
			usage: "append <path> <n>", help: "grow a file by n zero bytes", nargs: 2,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdAppend(fs, args) },
		},
		"truncate": {
			usage: "truncate <path> <n>", help: "shrink a file by n bytes", nargs: 2,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdTruncate(fs, args) },
		},
		"df": {
			usage: "df", help: "report inode and data-block usage", nargs: 0,
			run: func(fs *vfs.FileSystem, args []string) error { return cmdDf(fs) },
		},
	}
}

// runShell implements the startup protocol of spec.md §6 and then drives
// the command loop over stdin until exit/quit or EOF.
func runShell(path string) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := promptCreate(path, interactive, scanner); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	fs, err := vfs.Mount(path)
	if err != nil {
		return err
	}
	defer fs.Close()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		name := fields[0]
		args := fields[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			printHelp()
			continue
		}

		cmd, ok := commands[name]
		if !ok {
			log.Errorf("unknown command: %s", name)
			continue
		}
		if cmd.nargs >= 0 && len(args) != cmd.nargs {
			log.Errorf("%s: expected %d argument(s)", name, cmd.nargs)
			continue
		}
		if cmd.nargs == -1 && len(args) > 1 {
			log.Errorf("%s: expected 0 or 1 argument(s)", name)
			continue
		}

		if err := cmd.run(fs, args); err != nil {
			var ioErr *vfs.IOError
			if errors.As(err, &ioErr) {
				return ioErr
			}
			log.Errorf("%s: %v", name, err)
		}
	}
	return scanner.Err()
}

// promptCreate runs the y/n-then-size prompt from spec.md §6, or, if --size
// was supplied, creates the disk non-interactively.
func promptCreate(path string, interactive bool, scanner *bufio.Scanner) error {
	if flagSize != "" {
		size, err := bytefmt.ToBytes(flagSize)
		if err != nil {
			return fmt.Errorf("invalid --size: %w", err)
		}
		return vfs.Mkfs(path, int64(size))
	}

	if interactive {
		fmt.Printf("%s does not exist. Create it? (y/n) ", path)
	}
	if !readLine(scanner) {
		return fmt.Errorf("no response given")
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer != "y" && answer != "Y" {
		return fmt.Errorf("aborted")
	}

	if interactive {
		fmt.Print("size in bytes (or e.g. 4M): ")
	}
	if !readLine(scanner) {
		return fmt.Errorf("no size given")
	}
	sizeLine := strings.TrimSpace(scanner.Text())

	size, err := bytefmt.ToBytes(sizeLine)
	if err != nil {
		n, perr := strconv.ParseInt(sizeLine, 10, 64)
		if perr != nil || n <= 0 {
			return fmt.Errorf("invalid size: %s", sizeLine)
		}
		size = uint64(n)
	}

	return vfs.Mkfs(path, int64(size))
}

// readLine advances scanner past blank lines and '#' comments, per the
// startup protocol's "lines beginning with # are skipped" rule.
func readLine(scanner *bufio.Scanner) bool {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return true
	}
	return false
}

func printHelp() {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	for _, name := range commandOrder {
		c := commands[name]
		table.Append([]string{c.usage, c.help})
	}
	table.Append([]string{"help", "show this message"})
	table.Append([]string{"exit, quit", "leave the shell"})
	table.Render()
}

func cmdLs(fs *vfs.FileSystem, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	res, err := fs.Ls(path)
	if err != nil {
		return err
	}
	if !res.IsDir {
		fmt.Printf("%s\t%d bytes\n", res.Name, res.Size)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	for _, e := range res.Entries {
		kind := "file"
		if e.Dir {
			kind = "dir"
		}
		table.Append([]string{e.Name, kind, bytefmt.ByteSize(uint64(e.Size))})
	}
	table.Render()
	return nil
}

func cmdCd(fs *vfs.FileSystem, args []string) error {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}
	return fs.Cd(path)
}

func cmdPwd(fs *vfs.FileSystem) error {
	p, err := fs.Pwd()
	if err != nil {
		return err
	}
	fmt.Println(p)
	return nil
}

func cmdCpTo(fs *vfs.FileSystem, args []string) error {
	f, err := vio.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return fs.CpIn(f, f.Size(), args[1])
}

func cmdCpFrom(fs *vfs.FileSystem, args []string) error {
	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()
	return fs.CpOut(args[0], out)
}

func cmdAppend(fs *vfs.FileSystem, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return fmt.Errorf("n must be a positive integer")
	}
	written, err := fs.Append(args[0], vio.Zeroes, n)
	if err != nil {
		if written > 0 {
			log.Warnf("append: only %d of %d bytes were added", written, n)
		}
		return err
	}
	return nil
}

func cmdTruncate(fs *vfs.FileSystem, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return fmt.Errorf("n must be a positive integer")
	}
	return fs.Truncate(args[0], n)
}

func cmdDf(fs *vfs.FileSystem) error {
	stats := fs.Df()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.Append([]string{"inodes", fmt.Sprintf("%d/%d used", stats.UsedInodes, stats.TotalInodes)})
	table.Append([]string{"data blocks", fmt.Sprintf("%d/%d used", stats.UsedDataBlocks, stats.TotalDataBlocks)})
	table.Append([]string{"space", fmt.Sprintf("%s / %s", bytefmt.ByteSize(stats.UsedBytes), bytefmt.ByteSize(stats.TotalBytes))})
	table.Render()
	return nil
}
