package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"labelfind/internal/config"
	"labelfind/internal/entity"
	"labelfind/internal/usecase"
	"labelfind/pkg/logg"
	"os"
	"strings"
	"sync/atomic"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const consoleName = "Console"

var errExit = errors.New("exit")

type Interface struct {
	config     *config.Config
	logger     *zap.Logger
	usecase    *usecase.Service
	shutdowner fx.Shutdowner
	in         io.Reader
	out        io.Writer
	ctx        context.Context
	cancel     context.CancelFunc
	stopping   atomic.Bool
}

type Params struct {
	fx.In

	Config     *config.Config
	Logger     *zap.Logger
	Usecase    *usecase.Service
	Shutdowner fx.Shutdowner `optional:"true"`
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Interface{
		config:     params.Config,
		logger:     params.Logger.With(zap.String(logg.Layer, consoleName)),
		usecase:    params.Usecase,
		shutdowner: params.Shutdowner,
		in:         os.Stdin,
		out:        os.Stdout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start runs the read-eval loop until input ends, the user exits or Stop is
// called, then asks the application to shut down.
func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	scanner := bufio.NewScanner(i.in)

	for !i.stopping.Load() {
		fmt.Fprint(i.out, "\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if errors.Is(err, errExit) {
				break
			}

			i.logger.Debug("Command error", zap.Error(err))
			fmt.Fprintf(i.out, "Error: %v\n", err)
		}
	}

	if i.shutdowner != nil && !i.stopping.Load() {
		return i.shutdowner.Shutdown()
	}

	return scanner.Err()
}

func (i *Interface) Stop() error {
	if i.stopping.Swap(true) {
		return nil
	}

	i.logger.Info("Stopping console interface...")
	i.cancel()

	return nil
}

func (i *Interface) handleCommand(input string) error {
	cmd, err := parseCommand(input)
	if err != nil {
		return err
	}

	switch cmd.name {
	case "help", "h":
		i.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintln(i.out, "Shutting down...")

		return errExit
	case "kinds":
		i.printKinds()
	case "debug":
		i.usecase.Resolver.SetDebug(cmd.on)
		fmt.Fprintf(i.out, "Ranking trace at info level: %t\n", cmd.on)
	case "open":
		if err := i.usecase.Browser.Navigate(i.ctx, cmd.url); err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Opened %s\n", cmd.url)
	case "state":
		state, err := i.usecase.Browser.GetPageState(i.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(i.out, "%s\n%s\nframes: %d, debug: %t\n", state.Title, state.URL, state.Frames, i.usecase.Resolver.Debug())
	case "find":
		element, err := i.usecase.Resolver.Find(i.ctx, cmd.kind, cmd.label, cmd.index)
		if err != nil {
			return err
		}
		i.printElement("Found", element)
	case "click":
		element, err := i.usecase.Resolver.Click(i.ctx, cmd.kind, cmd.label, cmd.index)
		if err != nil {
			return err
		}
		i.printElement("Clicked", element)
	case "write":
		element, err := i.usecase.Resolver.Write(i.ctx, cmd.value, cmd.label, cmd.index)
		if err != nil {
			return err
		}
		i.printElement("Wrote into", element)
	case "wait":
		element, err := i.usecase.Resolver.WaitFind(i.ctx, cmd.kind, cmd.label, cmd.index)
		if err != nil {
			return err
		}
		i.printElement("Found", element)
	case "absent":
		if err := i.usecase.Resolver.AssertAbsent(i.ctx, cmd.kind, cmd.label, cmd.index); err != nil {
			return err
		}
		fmt.Fprintf(i.out, "No %s %q on the page\n", cmd.kind, cmd.label)
	case "check", "uncheck":
		element, err := i.usecase.Resolver.Check(i.ctx, cmd.label, cmd.index, cmd.name == "check")
		if err != nil {
			return err
		}
		action := "Checked"
		if cmd.name == "uncheck" {
			action = "Unchecked"
		}
		i.printElement(action, element)
	case "checked", "unchecked":
		element, err := i.usecase.Resolver.AssertChecked(i.ctx, cmd.label, cmd.index, cmd.name == "checked")
		if err != nil {
			return err
		}
		i.printElement("Verified "+cmd.name, element)
	case "select":
		element, err := i.usecase.Resolver.Select(i.ctx, cmd.value, cmd.label, cmd.index)
		if err != nil {
			return err
		}
		i.printElement(fmt.Sprintf("Selected %q in", cmd.value), element)
	case "expect":
		element, err := i.usecase.Resolver.AssertValue(i.ctx, cmd.value, cmd.label, cmd.index)
		if err != nil {
			return err
		}
		i.printElement(fmt.Sprintf("Verified %q in", cmd.value), element)
	}

	return nil
}

func (i *Interface) printElement(action string, element *entity.ResolvedElement) {
	t := table.NewWriter()
	t.SetOutputMirror(i.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s %s %q", action, element.Kind, element.Label))

	t.AppendRows([]table.Row{
		{"element", fmt.Sprintf("<%s> %s", element.Tag, element.Text)},
		{"frame", fmt.Sprintf("%d %s", element.Ref.Frame, element.FrameURL)},
		{"strategy", element.Strategy},
		{"provenance", element.Provenance},
		{"score", element.Score},
	})
	if element.Box != nil {
		t.AppendRow(table.Row{"box", fmt.Sprintf("%.0f,%.0f %.0fx%.0f", element.Box.X, element.Box.Y, element.Box.Width, element.Box.Height)})
	}
	t.AppendRow(table.Row{"resolution", element.ResolutionID.String()})

	t.Render()
}

func (i *Interface) printKinds() {
	t := table.NewWriter()
	t.SetOutputMirror(i.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Direction", "Patterns"})

	for _, name := range usecase.KindNames() {
		kind, err := usecase.LookupKind(name)
		if err != nil {
			continue
		}
		t.AppendRow(table.Row{kind.Name, kind.Direction, strings.Join(kind.Patterns, ", ")})
	}

	t.Render()
}

func (i *Interface) printBanner() {
	fmt.Fprintln(i.out, `
┌──────────────────────────────────────────────┐
│  labelfind: find page elements by their name │
└──────────────────────────────────────────────┘`)
}

func (i *Interface) printHelp() {
	fmt.Fprintln(i.out, `
Available commands:
  open <url>                          - Navigate the page
  find <kind> "<name>" [nth]          - Resolve an element and describe it
  click <kind> "<name>" [nth]         - Resolve an element and click it
  write "<value>" into "<name>" [nth] - Fill an input or textarea
  wait <kind> "<name>" [nth]          - Like find, retrying until the wait timeout
  absent <kind> "<name>" [nth]        - Succeed only if no such element is shown
  check|uncheck "<name>" [nth]        - Toggle a checkbox into the given state
  checked|unchecked "<name>" [nth]    - Verify the state of a checkbox
  select "<option>" from "<name>"     - Pick an option of a dropdown
  expect "<value>" in "<name>" [nth]  - Verify the value of an input
  state                               - Show the current page
  kinds                               - List element kinds
  debug on|off                        - Log ranking traces at info level
  help, h                             - Show this help message
  exit, quit, q                       - Exit the application

nth is a 1-based ordinal such as 2 or 2nd; the best match is used when omitted.`)
}
