// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"golang.org/x/exp/slices"
)

// Issue IDs for the failures packmk explains in detail.
const (
	ConfigLoadFailedId Id = iota + 1
	InvalidGroupingModeId
	RootNotReadableId
	OutputDirNotWritableId
	RulesFileNotWritableId
	WatchFailedId
)

// DefaultStyle picks a dark or light theme from the terminal, and plain
// text when output is not a terminal.
var DefaultStyle = styles.AutoStyle

type (
	// Id identifies an issue in the catalog. Zero means none.
	Id int

	// MarkdownMsg is the markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a markdown explanation of a failure and how to recover.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// ExtLinks returns a copy of the issue's reference links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue for a terminal using the glamour style at stylePath.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if links := i.ExtLinks(); len(links) > 0 {
		md += "\n\n## See also\n"
		for _, link := range links {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

packmk merges, in order: the user config file, ` + "`packmk.cue`" + ` in the
pack root, ` + "`PACKMK_*`" + ` environment variables and command-line flags.

## Things you can try
- Check the file for CUE syntax errors
- Compare the keys with the accepted set: ` + "`output_dir`, `rules_file`, `descriptor`, `bundle_suffix`, `single_suffix`, `aggregate_name`, `grouping`, `propagate_mtime`, `ignore`, `ui.verbose`" + `
- Suffixes must start with a dot, for example:
~~~cue
bundle_suffix: ".mcaddon"
single_suffix: ".mcpack"
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	invalidGroupingModeIssue = &Issue{
		id: InvalidGroupingModeId,
		mdMsg: `
# Unknown grouping mode

## Accepted modes
- ` + "`direct`" + `: a pack is bundled with the packs it references itself
- ` + "`transitive`" + `: packs connected by any chain of references share one archive

## Things you can try
~~~
$ packmk --generate-makefile --grouping transitive
~~~`,
	}

	rootNotReadableIssue = &Issue{
		id: RootNotReadableId,
		mdMsg: `
# The pack root could not be read

packmk scans the immediate subdirectories of the root for a descriptor file.

## Things you can try
- Run packmk from the directory holding your packs
- Or point at it explicitly:
~~~
$ packmk -C path/to/packs --generate-makefile
~~~`,
	}

	outputDirNotWritableIssue = &Issue{
		id: OutputDirNotWritableId,
		mdMsg: `
# The output directory could not be created

Archives are written to ` + "`output_dir`" + ` (default ` + "`./packs`" + `).

## Things you can try
- Check the permissions of the parent directory
- Remove a file that has the same name as the output directory
- Set another location in ` + "`packmk.cue`" + `:
~~~cue
output_dir: "./dist"
~~~`,
	}

	rulesFileNotWritableIssue = &Issue{
		id: RulesFileNotWritableId,
		mdMsg: `
# The rule file could not be written

## Things you can try
- Check that the pack root is writable
- Remove a read-only rule file left by another tool
- Choose another name with ` + "`rules_file`" + ` in ` + "`packmk.cue`",
		extLinks: []HttpLink{"https://www.gnu.org/software/make/manual/make.html"},
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watching stopped

## Things you can try
- Check the ` + "`ignore`" + ` patterns for syntax errors
- On Linux, raise the inotify watch limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Run without ` + "`--watch`" + ` and regenerate by hand`,
	}

	catalog = []*Issue{
		configLoadFailedIssue,
		invalidGroupingModeIssue,
		rootNotReadableIssue,
		outputDirNotWritableIssue,
		rulesFileNotWritableIssue,
		watchFailedIssue,
	}

	issues = func() map[Id]*Issue {
		m := make(map[Id]*Issue, len(catalog))
		for _, i := range catalog {
			m[i.Id()] = i
		}
		return m
	}()
)

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
