// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RootNotFoundId Id = iota + 1
	IncludeNotFoundId
	InclusionCycleId
	ConfigLoadFailedId
	ConfigParseErrorId
	CheckerNotFoundId
	SyntaxCheckFailedId
	WriteFailedId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# Root file not found!

We could not read the root file you asked us to compile.

## Things you can try:
- Check the path for typos:
~~~
$ appc build ./app.js
~~~

- Make sure the file exists and is readable
- Paths are resolved against the current working directory unless absolute`,
	}

	includeNotFoundIssue = &Issue{
		id: IncludeNotFoundId,
		mdMsg: `
# Included file could not be read!

A file referenced by an include directive is missing or unreadable. The
compiled output marks the spot with an UNREADABLE_FILE placeholder and the
tree keeps watching, so fixing the file heals the output automatically.

## Things you can try:
- Check the relative path inside the directive; it resolves against the
  directory of the file that contains it
- Create the missing file, the next write picks it up
- Quoted forms all work the same:
~~~js
include('./lib/util.js')
include("./lib/util.js")
~~~`,
	}

	inclusionCycleIssue = &Issue{
		id: InclusionCycleId,
		mdMsg: `
# Inclusion cycle detected!

A file includes one of its own ancestors, which would expand forever. The
offending directive is skipped and reported; the rest of the file compiles
normally.

## Example of a cycle:
~~~js
// a.js
include('b.js')

// b.js
include('a.js')  // Cycle: a -> b -> a
~~~

## Things you can try:
- Move the shared code into a third file and include it from both places
- Remember that a file may be included many times, just never by its own
  descendants`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file exists but could not be loaded.

## Things you can try:
- Regenerate a default config:
~~~
$ appc config init
~~~

- Inspect the effective configuration:
~~~
$ appc config show
~~~

- Check file permissions on the config directory`,
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Failed to parse configuration!

Your config file contains syntax errors or values the schema rejects.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Negative delays or an empty directive keyword

## Example of a valid config:
~~~cue
keyword:      "include"
watch_delay:  250
settle_delay: 50

write: {
	delay:           250
	check:           ["node", "--check", "{file}"]
	relative_errors: true
}
~~~`,
	}

	checkerNotFoundIssue = &Issue{
		id: CheckerNotFoundId,
		mdMsg: `
# Syntax checker not found!

The configured post-write syntax checker could not be started. The written
artifact is left untouched.

## Things you can try:
- Make sure the checker binary is installed and on your PATH
- Point the config at the right command:
~~~cue
write: {
	check: ["node", "--check", "{file}"]
}
~~~

- Disable checking entirely with an empty check list`,
	}

	syntaxCheckFailedIssue = &Issue{
		id: SyntaxCheckFailedId,
		mdMsg: `
# Compiled output failed its syntax check!

The artifact was replaced with a small stub that prints the failure trace
and exits non-zero, so whatever supervises the artifact sees a clean
failure instead of running broken code.

## Things you can try:
- Read the trace; positions are rewritten to point at your source files
- Fix the offending source file, the next write restores the artifact`,
	}

	writeFailedIssue = &Issue{
		id: WriteFailedId,
		mdMsg: `
# Failed to write compiled output!

The assembled artifact could not be written to disk. Writes are not
retried automatically; the next change triggers a fresh attempt.

## Things you can try:
- Check that the output directory exists and is writable
- Check free disk space
- Pick another output directory:
~~~
$ appc watch ./app.js --out ./dist
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# File watch failed!

A filesystem watch could not be established for one of the compiled files.
The existing tree keeps serving its last known content; edits to that file
just will not be noticed until the watch recovers.

## Things you can try:
- On Linux, raise the inotify limits:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~

- Check that the watched directory still exists`,
	}

	issues = map[Id]*Issue{
		rootNotFoundIssue.Id():      rootNotFoundIssue,
		includeNotFoundIssue.Id():   includeNotFoundIssue,
		inclusionCycleIssue.Id():    inclusionCycleIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		configParseErrorIssue.Id():  configParseErrorIssue,
		checkerNotFoundIssue.Id():   checkerNotFoundIssue,
		syntaxCheckFailedIssue.Id(): syntaxCheckFailedIssue,
		writeFailedIssue.Id():       writeFailedIssue,
		watchFailedIssue.Id():       watchFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
