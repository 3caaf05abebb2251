package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/core"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/progress"
	"github.com/orbit-drive/orbit/internal/view"
)

// errExit ends the shell loop.
var errExit = errors.New("exit")

const shellHelp = `Commands:
  login               Sign in with the saved connection record
  logout              Sign out and clear the listing
  ls [filter]         List the current folder, optionally filtered
  search <term>       Set the search filter ("search" alone clears it)
  cd <id>             Open a folder from the listing
  back                Go to the parent folder
  pwd                 Show the current path
  upload <path>       Upload a local file to the current folder
  uploads             Show recent uploads
  whoami              Show the signed-in user
  view grid|list      Switch the listing layout
  help                Show this help
  exit                Leave the shell`

// Shell is an interactive session over one Engine.
type Shell struct {
	engine *core.Engine
	out    io.Writer
	logger *logging.Logger
}

// NewShell creates a shell writing to out.
func NewShell(engine *core.Engine, out io.Writer, logger *logging.Logger) *Shell {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Shell{engine: engine, out: out, logger: logger}
}

// Run reads commands from in until exit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) prompt() string {
	if !s.engine.Authenticated() {
		return "orbit> "
	}
	history := s.engine.History()
	return fmt.Sprintf("orbit:%s> ", history[len(history)-1].Name)
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
		return nil

	case "exit", "quit":
		return errExit

	case "login":
		res, err := s.engine.Login(ctx)
		if err != nil {
			return err
		}
		if res.Advisory != "" {
			fmt.Fprintln(s.out, res.Advisory)
		}
		fmt.Fprintf(s.out, "Signed in as %s <%s> (%s mode)\n", res.User.DisplayName, res.User.Email, res.Mode)
		renderPage(s.out, s.engine.Page())
		return nil

	case "logout":
		s.engine.Logout()
		fmt.Fprintln(s.out, "Signed out")
		return nil

	case "ls":
		if !s.engine.Authenticated() {
			return core.ErrNotSignedIn
		}
		page := s.engine.Page()
		if rest != "" {
			in := pageInput(s.engine)
			in.Search = rest
			page = view.Project(in)
		}
		renderPage(s.out, page)
		return nil

	case "search":
		if err := s.engine.Search(rest); err != nil {
			return err
		}
		renderPage(s.out, s.engine.Page())
		return nil

	case "cd":
		if rest == "" {
			return errors.New("usage: cd <id>")
		}
		if rest == ".." {
			return s.back(ctx)
		}
		if err := s.engine.Open(ctx, rest); err != nil {
			return err
		}
		renderPage(s.out, s.engine.Page())
		return nil

	case "back":
		return s.back(ctx)

	case "pwd":
		fmt.Fprintln(s.out, s.engine.Path())
		return nil

	case "upload":
		if rest == "" {
			return errors.New("usage: upload <path>")
		}
		return s.upload(ctx, rest)

	case "uploads":
		for _, u := range s.engine.Uploads() {
			line := fmt.Sprintf("%s  %-10s %3.0f%%  %s", u.ID[:8], u.State, u.Progress*100, u.Name)
			if u.Err != nil {
				line += "  (" + u.Err.Error() + ")"
			}
			fmt.Fprintln(s.out, line)
		}
		return nil

	case "whoami":
		user := s.engine.User()
		if user == nil {
			fmt.Fprintln(s.out, "Not signed in")
			return nil
		}
		fmt.Fprintf(s.out, "%s <%s> (%s mode)\n", user.DisplayName, user.Email, s.engine.Mode())
		return nil

	case "view":
		mode := view.ViewMode(rest)
		if err := s.engine.SetViewMode(mode); err != nil {
			return err
		}
		renderPage(s.out, s.engine.Page())
		return nil

	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
}

func (s *Shell) back(ctx context.Context) error {
	moved, err := s.engine.Ascend(ctx)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(s.out, "Already at "+constants.RootFolderName)
		return nil
	}
	renderPage(s.out, s.engine.Page())
	return nil
}

func (s *Shell) upload(ctx context.Context, path string) error {
	desc, err := describeFile(path)
	if err != nil {
		return err
	}

	entry, err := s.engine.Upload(ctx, desc)
	if err != nil {
		return err
	}
	s.logger.Debug().Str("id", entry.ID).Str("type", entry.MimeType).Msg("upload inserted")
	fmt.Fprintf(s.out, "Uploaded %s (%s)\n", entry.Name, entry.SizeLabel)
	return nil
}

// describeFile builds the upload descriptor for a local file.
func describeFile(path string) (*models.FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot upload %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot upload %s: is a directory", path)
	}

	desc := models.FileDescriptor{
		Name:      filepath.Base(path),
		SizeBytes: uint64(info.Size()),
		LocalPath: path,
	}
	desc.DeclaredType = cloud.ContentType(desc)
	return &desc, nil
}

// pageInput rebuilds the projection input so ls can filter without
// touching the engine's search term.
func pageInput(e *core.Engine) view.Input {
	return view.Input{
		History:   e.History(),
		Entries:   e.List(),
		Mode:      e.ViewMode(),
		Uploading: e.Uploading(),
		Loading:   e.Loading(),
		User:      e.User(),
	}
}

func newShellCmd() *cobra.Command {
	var (
		metricsAddr string
		autoLogin   bool
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive drive shell",
		Long: `Start an interactive shell over the drive.

Type 'help' inside the shell for the list of commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			log := GetLogger()
			out := cmd.OutOrStdout()

			bus := events.NewEventBus(constants.EventBusDefaultBuffer)
			defer bus.Close()

			engine, m, err := newEngine(ctx, GetAppConfig(), bus, log)
			if err != nil {
				return err
			}
			defer engine.Close()

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           metricsMux(m.Handler()),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
				log.Info().Str("addr", metricsAddr).Msg("serving metrics")
			}

			trackerCtx, stopTracker := context.WithCancel(ctx)
			defer stopTracker()
			go progress.NewTracker(cmd.ErrOrStderr()).Run(trackerCtx, bus)

			shell := NewShell(engine, out, log)
			if autoLogin {
				if err := shell.Exec(ctx, "login"); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
			}
			return shell.Run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9090)")
	cmd.Flags().BoolVar(&autoLogin, "login", false, "Sign in on start")
	return cmd
}

func metricsMux(h http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	return mux
}
