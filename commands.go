package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go_todo/duedate"
	"go_todo/reminder"
	"go_todo/task"
	"go_todo/tui"
	"go_todo/watcher"
)

var (
	configFile string
	openOnly   bool

	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

var rootCmd = &cobra.Command{
	Use:   "go_todo",
	Short: "A terminal to-do list with due-date reminders",
	Long: `go_todo keeps a to-do list in a local SQLite database, infers due dates
from plain-language task text and sounds an alarm shortly before tasks
fall due. Run without arguments to open the interactive list.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTUI,
}

var addCmd = &cobra.Command{
	Use:   "add <task text>",
	Short: "Add a task, inferring its due date from the text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in due order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task between open and completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find tasks whose description contains text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var parseCmd = &cobra.Command{
	Use:   "parse <due text>",
	Short: "Show how a stored due date is read and when its reminder fires",
	Args:  cobra.MinimumNArgs(1),
	Run:   runParse,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default searches ./config, . and ~/.go_todo)")
	listCmd.Flags().BoolVar(&openOnly, "open", false, "hide completed tasks")

	rootCmd.AddCommand(addCmd, listCmd, doneCmd, rmCmd, searchCmd, askCmd, parseCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(configFile, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := rt.svc.Resync(ctx); err != nil {
		rt.logger.Warn("failed to schedule reminders", zap.Error(err))
	} else {
		rt.logger.Info("reminders scheduled", zap.Int("count", n))
	}

	if rt.cfg.Metrics.Addr != "" {
		go func() {
			if err := rt.metrics.Serve(ctx, rt.cfg.Metrics.Addr, rt.logger.Named("metrics")); err != nil {
				rt.logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	w, err := watcher.New(rt.store.Path(), rt.logger.Named("watcher"))
	if err != nil {
		return fmt.Errorf("failed to watch database: %w", err)
	}
	defer w.Stop()

	// Changes from other processes (e.g. `go_todo add`) need their
	// reminders scheduled here before the list reloads.
	tuiEvents := make(chan watcher.ChangeEvent, 1)
	w.Start()
	go func() {
		for event := range w.Events {
			if _, err := rt.svc.Resync(ctx); err != nil {
				rt.logger.Warn("failed to reschedule after change", zap.Error(err))
			}
			select {
			case tuiEvents <- event:
			default:
			}
		}
		close(tuiEvents)
	}()

	model := tui.New(rt.svc, tuiEvents, rt.svc.Alerts())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(configFile, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
	defer cancel()

	t, err := rt.svc.Add(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Printf("Added #%d: %s (due %s)\n", t.ID, t.Description, t.Due)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(configFile, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	tasks, err := rt.svc.List(cmd.Context())
	if err != nil {
		return err
	}
	if openOnly {
		open := tasks[:0]
		for _, t := range tasks {
			if !t.Completed {
				open = append(open, t)
			}
		}
		tasks = open
	}
	printTasks(tasks, time.Now())
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	rt, err := newRuntime(configFile, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	t, err := rt.svc.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}
	state := "reopened"
	if t.Completed {
		state = "completed"
	}
	fmt.Printf("#%d %s: %s\n", t.ID, state, t.Description)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	rt, err := newRuntime(configFile, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.svc.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted #%d\n", id)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(configFile, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	term := strings.Join(args, " ")
	tasks, err := rt.svc.Search(cmd.Context(), term)
	if err != nil {
		return err
	}
	writeSearchResults(os.Stdout, term, tasks, time.Now())
	return nil
}

// writeSearchResults reports how many tasks matched term, then lists tasks.
// With no match, tasks holds the whole list.
func writeSearchResults(w io.Writer, term string, tasks []task.Task, now time.Time) {
	if n := len(task.Filter(tasks, term)); n > 0 {
		fmt.Fprintf(w, "Found %d todo(s) matching %q\n\n", n, term)
	} else {
		fmt.Fprintf(w, "No todos found matching %q\n\n", term)
	}
	writeTasks(w, tasks, now)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(configFile, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 90*time.Second)
	defer cancel()

	answer, err := rt.svc.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(answer.Text)
	if len(answer.Tasks) > 0 {
		fmt.Println()
		printTasks(answer.Tasks, time.Now())
	}
	return nil
}

func runParse(cmd *cobra.Command, args []string) {
	text := strings.Join(args, " ")
	now := time.Now()
	r := duedate.Parse(text)
	if !r.OK {
		fmt.Printf("%q is not a due date (expected %q)\n", text, duedate.Layout)
		return
	}
	fmt.Printf("due:      %s\n", r.Time.Format(time.RFC1123))
	tr, ok := reminder.Compute(task.Task{Description: text, Due: text}, now)
	if !ok {
		fmt.Println("reminder: none (already past)")
		return
	}
	fmt.Printf("reminder: %s (%s before)\n", tr.At.Format(time.RFC1123), tr.Lead)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func printTasks(tasks []task.Task, now time.Time) {
	writeTasks(os.Stdout, tasks, now)
}

func writeTasks(w io.Writer, tasks []task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	current := task.Section(-1)
	for _, t := range tasks {
		kind := task.SectionOf(t, now)
		if kind != current {
			if current != task.Section(-1) {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, headerStyle.Render(kind.String()))
			current = kind
		}
		line := fmt.Sprintf("  #%-4d %-22s %s", t.ID, t.Due, t.Description)
		switch kind {
		case task.Done:
			line = doneStyle.Render(line)
		case task.Overdue:
			line = overdueStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}
