package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe      Command = "serve"
	CommandStatus     Command = "status"
	CommandStart      Command = "start"
	CommandAsk        Command = "ask"
	CommandFollowUp   Command = "followup"
	CommandListen     Command = "listen"
	CommandUtter      Command = "utter"
	CommandPanel      Command = "panel"
	CommandMode       Command = "mode"
	CommandReplay     Command = "replay"
	CommandEnd        Command = "end"
	CommandReset      Command = "reset"
	CommandRetry      Command = "retry"
	CommandTranscript Command = "transcript"
	CommandCopy       Command = "copy"
	CommandAbout      Command = "about"
	CommandResize     Command = "resize"
	CommandQuestions  Command = "questions"
	CommandHistory    Command = "history"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

// arity bounds the positional arguments a command accepts. max < 0 means
// unbounded; those commands take free text.
type arity struct {
	min, max int
	usage    string
}

var commands = map[Command]arity{
	CommandServe:      {0, 0, ""},
	CommandStatus:     {0, 0, ""},
	CommandStart:      {0, 0, ""},
	CommandAsk:        {1, 1, "<question-id>"},
	CommandFollowUp:   {1, -1, "<text>"},
	CommandListen:     {0, 0, ""},
	CommandUtter:      {1, -1, "<text>"},
	CommandPanel:      {1, -1, "<text>"},
	CommandMode:       {1, 1, "<voice|keyboard>"},
	CommandReplay:     {0, 0, ""},
	CommandEnd:        {0, 0, ""},
	CommandReset:      {0, 0, ""},
	CommandRetry:      {0, 0, ""},
	CommandTranscript: {0, 1, "[PATH]"},
	CommandCopy:       {0, 0, ""},
	CommandAbout:      {0, 1, "[open|close]"},
	CommandResize:     {1, 1, "<delta>"},
	CommandQuestions:  {0, 0, ""},
	CommandHistory:    {0, 1, "[session-id]"},
	CommandDoctor:     {0, 0, ""},
	CommandVersion:    {0, 0, ""},
	CommandHelp:       {0, 0, ""},
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	ShowHelp   bool
}

// Text joins the positional arguments, for free-text commands.
func (p Parsed) Text() string {
	return strings.Join(p.Args, " ")
}

// Parse reads global flags up to the command; everything after the command
// is positional, so `resize -2` works.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			spec, ok := commands[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			rest := args[i+1:]
			if len(rest) < spec.min {
				return Parsed{}, fmt.Errorf("%s requires %s", cmd, spec.usage)
			}
			if spec.max >= 0 && len(rest) > spec.max {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if len(rest) > 0 {
				parsed.Args = append([]string(nil), rest...)
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Session:
  serve                   Run the interview owner process (IPC + optional HTTP)
  status                  Print current state (idle when no owner)
  start                   Begin the session
  retry                   Reconnect after an error
  end                     Close the session, after any in-flight answer
  reset                   Discard the finished session and start a new one

Turns:
  questions               List configured questions
  ask <question-id>       Select a scripted question
  followup <text>         Submit the one keyboard follow-up
  listen                  Start voice capture for the follow-up
  utter <text>            Deliver a finalized voice capture
  panel <text>            Ask a free-text panel question
  mode <voice|keyboard>   Switch input mode
  replay                  Speak the last answer again

Transcript:
  transcript [PATH]       Print the export text, or save it to PATH
  copy                    Copy the export text to the clipboard
  history [session-id]    List archived sessions, or print one

View:
  about [open|close]      Toggle the about modal
  resize <delta>          Resize the transcript pane

Other:
  doctor                  Run configuration and environment checks
  version                 Print version information
  help                    Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/raybot/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
